package output

import "strconv"

// GenerateResult is the outcome of a generate request.
type GenerateResult struct {
	Server string `json:"server" yaml:"server"`
	Count  uint16 `json:"count" yaml:"count"`
	Length uint8  `json:"length" yaml:"length"`
	OK     bool   `json:"ok" yaml:"ok"`
}

// Table implements Tabular.
func (r GenerateResult) Table() *Table {
	status := "rejected"
	if r.OK {
		status = "ok"
	}
	return &Table{
		Headers: []string{"COUNT", "LENGTH", "RESULT"},
		Rows: [][]string{{
			strconv.Itoa(int(r.Count)),
			strconv.Itoa(int(r.Length)),
			status,
		}},
	}
}

// UseResult is the outcome of a use request.
type UseResult struct {
	Server  string `json:"server" yaml:"server"`
	Code    string `json:"code" yaml:"code"`
	Result  string `json:"result" yaml:"result"`
	Success bool   `json:"success" yaml:"success"`
}

// Table implements Tabular.
func (r UseResult) Table() *Table {
	return &Table{
		Headers: []string{"CODE", "RESULT"},
		Rows:    [][]string{{r.Code, r.Result}},
	}
}
