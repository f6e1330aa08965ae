package models

// FormsetRowRequest asks for the next row of a repeatable group.
type FormsetRowRequest struct {
	Prefix   string `json:"prefix" binding:"required"`
	Template string `json:"template" binding:"required"`
	Count    int    `json:"count"`
}

// FormsetRowResponse carries the cloned row and the new count-field value.
type FormsetRowResponse struct {
	Row        string `json:"row"`
	TotalForms int    `json:"total_forms"`
}

// FormsetRemoveRequest asks for a row to be deleted.
type FormsetRemoveRequest struct {
	Row string `json:"row" binding:"required"`
}

// FormsetRemoveResponse reports the delete outcome: a persisted row comes
// back flagged and hidden, an unsaved row comes back empty with Removed set.
type FormsetRemoveResponse struct {
	Row     string `json:"row"`
	Removed bool   `json:"removed"`
}

// FragmentRequest wraps a rendered markup snippet to be transformed.
type FragmentRequest struct {
	Fragment string `json:"fragment" binding:"required"`
}

// FragmentResponse wraps the transformed markup.
type FragmentResponse struct {
	Fragment string `json:"fragment"`
}

// TableRequest wraps a rendered table for export or filtering.
type TableRequest struct {
	Table    string `json:"table" binding:"required"`
	Filename string `json:"filename"`
	Query    string `json:"query"`
}
