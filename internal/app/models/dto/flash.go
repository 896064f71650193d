package dto

// FlashLevel mirrors the message levels shown on every page
type FlashLevel string

const (
	FlashSuccess FlashLevel = "success"
	FlashError   FlashLevel = "error"
	FlashInfo    FlashLevel = "info"
)

// Flash is a one-shot message stored in the session until the next page render
type Flash struct {
	Level FlashLevel `json:"level"`
	Text  string     `json:"text"`
}

// CSSClass maps the level to the alert class of the layout
func (f Flash) CSSClass() string {
	switch f.Level {
	case FlashSuccess:
		return "alert-success"
	case FlashError:
		return "alert-danger"
	default:
		return "alert-info"
	}
}
