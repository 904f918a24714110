package script

// NoSpeaker is the code of a missing speaker (scene boundaries) or of a name
// that was not seen when the codes were built.
const NoSpeaker = -1

// SpeakerCodes assigns an integer to each distinct speaker name, in order of
// first appearance, starting at 0. Codes are stable for a given input order.
type SpeakerCodes struct {
	codes map[string]int
	names []string
}

// NewSpeakerCodes builds codes from the observed speakers. Empty names are skipped.
func NewSpeakerCodes(speakers []string) *SpeakerCodes {
	sc := &SpeakerCodes{codes: make(map[string]int)}
	for _, s := range speakers {
		if s == "" {
			continue
		}
		if _, ok := sc.codes[s]; ok {
			continue
		}
		sc.codes[s] = len(sc.names)
		sc.names = append(sc.names, s)
	}
	return sc
}

// Code returns the code of name, or NoSpeaker.
func (sc *SpeakerCodes) Code(name string) int {
	if c, ok := sc.codes[name]; ok {
		return c
	}
	return NoSpeaker
}

// Name returns the speaker for code, or "" when the code is unknown.
func (sc *SpeakerCodes) Name(code int) string {
	if code < 0 || code >= len(sc.names) {
		return ""
	}
	return sc.names[code]
}

// Names lists the speakers in code order.
func (sc *SpeakerCodes) Names() []string {
	return append([]string(nil), sc.names...)
}

// Len is the number of distinct speakers.
func (sc *SpeakerCodes) Len() int { return len(sc.names) }
