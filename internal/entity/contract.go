package entity

import "time"

// ContractRecord is the structured result of one extraction run.
// Every field defaults to "" (or an empty slice); downstream consumers
// index fields unconditionally.
type ContractRecord struct {
	ContractNumber string   `json:"contract_number"`
	Contractor     string   `json:"contractor"`
	Description    string   `json:"description"`
	Amount         string   `json:"amount"`
	TermDays       string   `json:"term_days"`
	Annexes        []string `json:"annexes"`
	Area           string   `json:"area"`
}

// Contract is a stored contract row plus its file metadata, for
// transfer between layers.
type Contract struct {
	ID             int64     `json:"id"`
	Area           string    `json:"area"`
	ContractNumber string    `json:"contract_number"`
	Contractor     string    `json:"contractor"`
	Amount         string    `json:"amount"`
	TermDays       string    `json:"term_days"`
	Description    string    `json:"description"`
	Annexes        []string  `json:"annexes"`
	Filename       string    `json:"filename"`
	ContentType    string    `json:"content_type"`
	SizeBytes      int64     `json:"size_bytes"`
	HashSHA256     string    `json:"hash_sha256"`
	UploadedAt     time.Time `json:"uploaded_at"`
	UploadedBy     string    `json:"uploaded_by"`
}

// ToRecord projects the stored row back onto the extraction shape, for
// re-rendering exports from persisted data.
func (c *Contract) ToRecord() ContractRecord {
	annexes := c.Annexes
	if annexes == nil {
		annexes = []string{}
	}
	return ContractRecord{
		ContractNumber: c.ContractNumber,
		Contractor:     c.Contractor,
		Description:    c.Description,
		Amount:         c.Amount,
		TermDays:       c.TermDays,
		Annexes:        annexes,
		Area:           c.Area,
	}
}
