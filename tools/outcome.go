package tools

import "encoding/json"

// Outcome is what a tool call produces, local or remote. A non-empty Err
// means the tool failed in a way the model can react to.
type Outcome struct {
	Content string
	Err     string
}

func (o Outcome) IsError() bool {
	return o.Err != ""
}

func Errorf(format string, args ...any) Outcome {
	return Outcome{
		Err: sprintf(format, args...),
	}
}

type outcomeJSON struct {
	Content string  `json:"content"`
	Err     *string `json:"error"`
}

var _ json.Marshaler = Outcome{}

func (o Outcome) MarshalJSON() ([]byte, error) {
	j := outcomeJSON{
		Content: o.Content,
	}
	if o.Err != "" {
		j.Err = &o.Err
	}
	return json.Marshal(j)
}

var _ json.Unmarshaler = new(Outcome)

func (o *Outcome) UnmarshalJSON(data []byte) error {
	var j outcomeJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	o.Content = j.Content
	if j.Err != nil {
		o.Err = *j.Err
	} else {
		o.Err = ""
	}
	return nil
}
