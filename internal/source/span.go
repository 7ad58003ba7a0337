package source

import (
	"fmt"
)

// Span указывает на диапазон байт внутри одного файла.
type Span struct {
	File  FileID
	Start uint32 // в байтах включительно
	End   uint32 // в байтах не включительно
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// TrimPrefix отрезает n байт с начала диапазона.
// Используется ревратером, чтобы восстановить под-диапазон имени
// внутри вызова (например, `token` внутри `timestamped_token_prop`)
// без повторной лексации.
func (s Span) TrimPrefix(n uint32) Span {
	s.Start += n
	if s.Start > s.End {
		s.Start = s.End
	}
	return s
}

// TrimSuffix отрезает n байт с конца диапазона.
func (s Span) TrimSuffix(n uint32) Span {
	if s.End-s.Start < n {
		s.End = s.Start
		return s
	}
	s.End -= n
	return s
}
