package models

// Country is the flattened view of an upstream country record.
type Country struct {
	Name      string   `json:"name"`
	Currency  string   `json:"currency"`
	Capital   string   `json:"capital"`
	Languages []string `json:"languages"`
	Flag      string   `json:"flag"`
}
