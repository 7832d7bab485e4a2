package server

import (
	"github.com/Loran-38/anonyjud/internal/anonymizer"
	"github.com/Loran-38/anonyjud/internal/document"
)

// AnonymizeRequest carries one text plus the entity profiles to hide.
type AnonymizeRequest struct {
	Text     string              `json:"text"`
	Entities []anonymizer.Entity `json:"entities"`
}

// AnonymizeResponse returns the tagged text and the tag→value mapping
// needed to reverse it.
type AnonymizeResponse struct {
	Text    string              `json:"text"`
	Mapping *anonymizer.Mapping `json:"mapping"`
}

// BlocksAnonymizeRequest carries a block-structured document. All blocks
// share one tag sequence.
type BlocksAnonymizeRequest struct {
	Blocks   []document.Block    `json:"blocks"`
	Entities []anonymizer.Entity `json:"entities"`
}

// BlocksAnonymizeResponse mirrors BlocksAnonymizeRequest.
type BlocksAnonymizeResponse struct {
	Blocks  []document.Block    `json:"blocks"`
	Mapping *anonymizer.Mapping `json:"mapping"`
}

// DeanonymizeRequest carries tagged text and the mapping produced by a
// previous anonymize call.
type DeanonymizeRequest struct {
	Text    string              `json:"text"`
	Mapping *anonymizer.Mapping `json:"mapping"`
}

// DeanonymizeResponse returns the restored text.
type DeanonymizeResponse struct {
	Text string `json:"text"`
}

// BlocksDeanonymizeRequest restores a block-structured document.
type BlocksDeanonymizeRequest struct {
	Blocks  []document.Block    `json:"blocks"`
	Mapping *anonymizer.Mapping `json:"mapping"`
}

// BlocksDeanonymizeResponse mirrors BlocksDeanonymizeRequest.
type BlocksDeanonymizeResponse struct {
	Blocks []document.Block `json:"blocks"`
}

// FitRequest asks how replacement text will be sized into a run's box.
type FitRequest struct {
	Text     string  `json:"text"`
	Font     string  `json:"font"`
	Bold     bool    `json:"bold"`
	Italic   bool    `json:"italic"`
	Size     float64 `json:"size"`
	BoxWidth float64 `json:"box_width"`
}

// FitResponse reports the resolved font and the negotiated size.
type FitResponse struct {
	Font       string  `json:"font"`
	Resolution string  `json:"resolution"`
	Size       float64 `json:"size"`
	Width      float64 `json:"width"`
	Floored    bool    `json:"floored"`
}

// ValidateResponse reports the outcome of a document upload check.
type ValidateResponse struct {
	Valid bool   `json:"valid"`
	Size  int64  `json:"size"`
	Error string `json:"error,omitempty"`
}

// ErrorResponse is the JSON body sent with any non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}
