package protocol

// Type is the request discriminant carried in the TYPE field.
type Type string

const (
	TypeReady   Type = "READY"
	TypeAttempt Type = "ATTEMPT"
	TypeAnswer  Type = "ANSWER"
	TypeError   Type = "ERROR"
)

// IsValid reports whether t is one of the four request types.
func (t Type) IsValid() bool {
	switch t {
	case TypeReady, TypeAttempt, TypeAnswer, TypeError:
		return true
	}
	return false
}

// AnswerStatus is an outcome tag carried in an ANSWER.
type AnswerStatus string

const (
	StatusCorrect        AnswerStatus = "CORRECT"
	StatusIncorrect      AnswerStatus = "INCORRECT"
	StatusFullSubCorrect AnswerStatus = "FULL_SUB_CORRECT"
	StatusVictory        AnswerStatus = "VICTORY"
)

// IsValid reports whether s is a recognized answer tag.
func (s AnswerStatus) IsValid() bool {
	switch s {
	case StatusCorrect, StatusIncorrect, StatusFullSubCorrect, StatusVictory:
		return true
	}
	return false
}

// ErrorStatus is the outcome tag carried in an ERROR.
type ErrorStatus string

const (
	StatusOutOfRange       ErrorStatus = "OUT_OF_RANGE"
	StatusAttemptNotInTurn ErrorStatus = "ATTEMPT_NOT_IN_TURN"
	StatusClosed           ErrorStatus = "CLOSED"
	StatusUnexpected       ErrorStatus = "UNEXPECTED"
)

// IsValid reports whether s is a recognized error tag.
func (s ErrorStatus) IsValid() bool {
	switch s {
	case StatusOutOfRange, StatusAttemptNotInTurn, StatusClosed, StatusUnexpected:
		return true
	}
	return false
}

// ParseAnswerStatuses converts raw tags. ok is false if the list is empty
// or any tag is unknown.
func ParseAnswerStatuses(tags []string) (statuses []AnswerStatus, ok bool) {
	if len(tags) == 0 {
		return nil, false
	}
	statuses = make([]AnswerStatus, len(tags))
	for i, tag := range tags {
		s := AnswerStatus(tag)
		if !s.IsValid() {
			return nil, false
		}
		statuses[i] = s
	}
	return statuses, true
}

// ContainsStatus reports whether s is in statuses.
func ContainsStatus(statuses []AnswerStatus, s AnswerStatus) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}
