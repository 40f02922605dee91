package generation

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ActionGenerateArticle is the fixed action tag of a generation request.
const ActionGenerateArticle = "generate_kb_article"

// Request is the JSON body POSTed to the generation endpoint.
type Request struct {
	LicenseKey   string         `json:"licenseKey"`
	Domain       string         `json:"domain"`
	GeminiAPIKey string         `json:"geminiApiKey"`
	GeminiModel  string         `json:"geminiModel"`
	Action       string         `json:"action"`
	Context      RequestContext `json:"context"`
}

// RequestContext carries the ticket transcript and candidate categories.
type RequestContext struct {
	TicketID      int64      `json:"ticket_id"`
	TicketSubject string     `json:"ticket_subject"`
	Conversation  string     `json:"conversation"`
	KBCategories  []Category `json:"kb_categories"`
}

// Category is a candidate KB category offered to the model.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// envelope is the top level of every endpoint response.
type envelope struct {
	Success truthy          `json:"success"`
	Error   text            `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// draftPayload is the data object of a successful response.
type draftPayload struct {
	Title                 text       `json:"title"`
	Content               text       `json:"content"`
	Tags                  text       `json:"tags"`
	SuggestedCategoryID   categoryID `json:"suggested_category_id"`
	SuggestedCategoryName text       `json:"suggested_category_name"`
}

// text accepts a JSON string, number, boolean or array of those. Arrays
// are joined with ", " so a tag list decodes the same as a tag string.
// Null and objects leave it unset.
type text struct {
	Value string
	Set   bool
}

func (t *text) UnmarshalJSON(b []byte) error {
	*t = text{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text{Value: s, Set: true}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			var it text
			if err := it.UnmarshalJSON(item); err != nil {
				return err
			}
			if it.Set {
				parts = append(parts, it.Value)
			}
		}
		*t = text{Value: strings.Join(parts, ", "), Set: true}
	case '{':
		// objects carry no usable text
	case 't', 'f':
		if b[0] == 't' {
			*t = text{Value: "1", Set: true}
		} else {
			*t = text{Value: "", Set: true}
		}
	default:
		*t = text{Value: string(b), Set: true}
	}
	return nil
}

// Or returns the value, or def when unset.
func (t text) Or(def string) string {
	if !t.Set {
		return def
	}
	return t.Value
}

// Ptr returns nil when unset.
func (t text) Ptr() *string {
	if !t.Set {
		return nil
	}
	v := t.Value
	return &v
}

// categoryID accepts an integer or a numeric string. Anything else,
// including null and 0, leaves it unset.
type categoryID struct {
	Value int64
	Set   bool
}

func (c *categoryID) UnmarshalJSON(b []byte) error {
	*c = categoryID{}
	var t text
	if err := t.UnmarshalJSON(b); err != nil || !t.Set {
		return nil
	}
	s := strings.TrimSpace(t.Value)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
		*c = categoryID{Value: n, Set: true}
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 && f == float64(int64(f)) {
		*c = categoryID{Value: int64(f), Set: true}
	}
	return nil
}

// Ptr returns nil when unset.
func (c categoryID) Ptr() *int64 {
	if !c.Set {
		return nil
	}
	v := c.Value
	return &v
}

// truthy follows loose truthiness: true, non-zero numbers, non-empty
// strings other than "0", and non-empty arrays or objects.
type truthy bool

func (t *truthy) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*t = false
	if len(b) == 0 {
		return nil
	}

	switch b[0] {
	case 't':
		*t = true
	case 'f', 'n':
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = truthy(s != "" && s != "0")
	case '[':
		*t = truthy(!bytes.Equal(bytes.Join(bytes.Fields(b), nil), []byte("[]")))
	case '{':
		*t = truthy(!bytes.Equal(bytes.Join(bytes.Fields(b), nil), []byte("{}")))
	default:
		f, err := strconv.ParseFloat(string(b), 64)
		*t = truthy(err == nil && f != 0)
	}
	return nil
}
