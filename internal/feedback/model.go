package feedback

import "encoding/json"

// TipKind classifies a tip. Values other than good and improve are kept as
// returned by the model.
type TipKind string

const (
	TipGood    TipKind = "good"
	TipImprove TipKind = "improve"
)

// Tip is a single piece of advice within a category. ATS tips carry no
// explanation.
type Tip struct {
	Kind        TipKind `json:"type"`
	Message     string  `json:"tip"`
	Explanation string  `json:"explanation,omitempty"`
}

// Category is a scored feedback dimension.
type Category struct {
	Score int   `json:"score"`
	Tips  []Tip `json:"tips"`
}

// MarshalJSON always emits tips as an array.
func (c Category) MarshalJSON() ([]byte, error) {
	type plain Category
	p := plain(c)
	if p.Tips == nil {
		p.Tips = []Tip{}
	}
	return json.Marshal(p)
}

// Report is the structured critique of a résumé against a job description.
type Report struct {
	OverallScore int      `json:"overallScore"`
	ATS          Category `json:"ats"`
	ToneAndStyle Category `json:"toneAndStyle"`
	Content      Category `json:"content"`
	Structure    Category `json:"structure"`
	Skills       Category `json:"skills"`
}

// UnmarshalJSON decodes leniently so stored reports written by older clients
// or straight from the model still load.
func (r *Report) UnmarshalJSON(data []byte) error {
	rep, err := Decode(data)
	if err != nil {
		return err
	}
	*r = rep
	return nil
}

// CategoryNames lists the JSON keys of the five categories in display order.
var CategoryNames = []string{"ats", "toneAndStyle", "content", "structure", "skills"}
