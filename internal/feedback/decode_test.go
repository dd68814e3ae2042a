package feedback

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFullReport(t *testing.T) {
	raw := `{
		"overallScore": 72,
		"ATS": {"score": 80, "tips": [{"type": "good", "tip": "Clear headings"}]},
		"toneAndStyle": {"score": 65, "tips": [{"type": "improve", "tip": "Use active voice", "explanation": "Passive phrasing hides impact."}]},
		"content": {"score": 70, "tips": []},
		"structure": {"score": 75, "tips": [{"type": "good", "tip": "One page", "explanation": "Fits recruiter skim time."}]},
		"skills": {"score": 68, "tips": [{"type": "improve", "tip": "Mention gRPC", "explanation": "The role lists it."}]}
	}`

	rep, err := Decode([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, 72, rep.OverallScore)
	assert.Equal(t, 80, rep.ATS.Score)
	require.Len(t, rep.ATS.Tips, 1)
	assert.Equal(t, TipGood, rep.ATS.Tips[0].Kind)
	assert.Equal(t, "Clear headings", rep.ATS.Tips[0].Message)
	assert.Empty(t, rep.ATS.Tips[0].Explanation)
	assert.Equal(t, "Passive phrasing hides impact.", rep.ToneAndStyle.Tips[0].Explanation)
	assert.Equal(t, 68, rep.Skills.Score)
}

func TestDecodeDefaultsMissingFields(t *testing.T) {
	rep, err := Decode([]byte(`{"overallScore": "81.6", "content": {"tips": "none"}, "extra": true}`))
	require.NoError(t, err)

	assert.Equal(t, 82, rep.OverallScore)
	assert.Equal(t, 0, rep.Content.Score)
	assert.NotNil(t, rep.Content.Tips)
	assert.Empty(t, rep.Content.Tips)
	assert.Equal(t, 0, rep.ATS.Score)
	assert.NotNil(t, rep.Skills.Tips)
}

func TestDecodeToleratesVariants(t *testing.T) {
	rep, err := Decode([]byte(`{
		"overallScore": 55.4,
		"ats": {"score": "60", "tips": {"type": "Improve", "tip": "Add keywords"}},
		"skills": {"score": 40, "tips": [{"kind": "neutral", "message": "Consider Rust"}, "Plain string tip", 7]}
	}`))
	require.NoError(t, err)

	assert.Equal(t, 55, rep.OverallScore)
	assert.Equal(t, 60, rep.ATS.Score)
	require.Len(t, rep.ATS.Tips, 1)
	assert.Equal(t, TipImprove, rep.ATS.Tips[0].Kind)

	require.Len(t, rep.Skills.Tips, 2)
	assert.Equal(t, TipKind("neutral"), rep.Skills.Tips[0].Kind)
	assert.Equal(t, "Consider Rust", rep.Skills.Tips[0].Message)
	assert.Equal(t, "Plain string tip", rep.Skills.Tips[1].Message)
}

func TestDecodeRejectsNonObject(t *testing.T) {
	_, err := Decode([]byte(`[1,2,3]`))
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = Decode([]byte(`{"a":`))
	assert.Error(t, err)
}

func TestReportMarshalsAllCategories(t *testing.T) {
	out, err := json.Marshal(Report{OverallScore: 10})
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(out, &generic))
	assert.Len(t, generic, 6)
	for _, name := range CategoryNames {
		cat, ok := generic[name].(map[string]any)
		require.True(t, ok, "missing category %s", name)
		tips, ok := cat["tips"].([]any)
		require.True(t, ok, "tips for %s must be an array", name)
		assert.Empty(t, tips)
	}
}

func TestReportUnmarshalIsLenient(t *testing.T) {
	var rep Report
	require.NoError(t, json.Unmarshal([]byte(`{"overallScore": 90, "ATS": {"score": 91}}`), &rep))
	assert.Equal(t, 90, rep.OverallScore)
	assert.Equal(t, 91, rep.ATS.Score)

	var ptr *Report
	require.NoError(t, json.Unmarshal([]byte(`null`), &ptr))
	assert.Nil(t, ptr)
}
