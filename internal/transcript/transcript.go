package transcript

import (
	"encoding/json"
	"strings"
)

// Message is a single speaker-tagged line of a call transcript.
//
// AgentSide reports which side of the conversation bubble the message
// belongs to. The upstream trainer labels the *agent's* lines with the
// role token "user" (a known naming inversion in the source data); the
// mapping is kept literal here rather than "fixed".
type Message struct {
	Role      string `json:"role"`
	Text      string `json:"message"`
	AgentSide bool   `json:"is_agent"`
}

// agentSideRoles is the literal role-to-side table. Do not invert it
// without confirming upstream semantics first.
var agentSideRoles = map[string]bool{
	"user": true,
}

// Marker delimits message segments in raw transcript text.
const Marker = "role:"

const messageField = "message:"

// Parse turns a raw delimited transcript blob into an ordered message
// sequence. Text before the first marker is discarded; segments missing
// either the role token or the message field are dropped. Parse never
// fails: the worst case for any input is an empty slice.
func Parse(raw string) []Message {
	if raw == "" {
		return nil
	}

	var out []Message
	i := strings.Index(raw, Marker)
	for i >= 0 {
		rest := raw[i+len(Marker):]
		end := strings.Index(rest, Marker)

		var seg string
		if end >= 0 {
			seg = rest[:end]
		} else {
			seg = rest
		}

		if m, ok := parseSegment(seg); ok {
			out = append(out, m)
		}

		if end < 0 {
			break
		}
		i = i + len(Marker) + end
	}
	return out
}

// parseSegment reads "<token> ... message:<text>" from a single segment
// (the leading "role:" marker already stripped).
func parseSegment(seg string) (Message, bool) {
	s := strings.TrimLeft(seg, " \t\r\n")

	end := 0
	for end < len(s) && isWord(s[end]) {
		end++
	}
	role := s[:end]
	if role == "" {
		return Message{}, false
	}
	// A token running straight into ':' is a field keyword ("message:"),
	// not a role. The segment has no role and is dropped.
	if end < len(s) && s[end] == ':' {
		return Message{}, false
	}

	mi := strings.Index(s[end:], messageField)
	if mi < 0 {
		return Message{}, false
	}
	text := strings.TrimSpace(s[end+mi+len(messageField):])

	return Message{
		Role:      role,
		Text:      text,
		AgentSide: agentSideRoles[role],
	}, true
}

func isWord(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '_':
		return true
	}
	return false
}

// Transcript is the transcript field as delivered by the platform API.
// The field is either a raw delimited string or an already-structured
// message array; both decode to the same ordered sequence.
type Transcript []Message

func (t *Transcript) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Parse(s)
		return nil
	}

	var msgs []Message
	if err := json.Unmarshal(data, &msgs); err == nil {
		for i := range msgs {
			msgs[i].AgentSide = agentSideRoles[msgs[i].Role]
		}
		*t = msgs
		return nil
	}

	// Malformed transcript payloads are absorbed, not surfaced.
	*t = nil
	return nil
}

func (t Transcript) MarshalJSON() ([]byte, error) {
	return json.Marshal([]Message(t))
}
