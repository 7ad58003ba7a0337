package source

import "testing"

func TestInternerBasic(t *testing.T) {
	in := NewInterner()

	if s, ok := in.Lookup(NoStringID); !ok || s != "" {
		t.Errorf("NoStringID должен возвращать пустую строку, получили: %q, ok=%v", s, ok)
	}

	id1 := in.Intern("token")
	if id1 == NoStringID {
		t.Error("Intern не должен возвращать NoStringID для непустой строки")
	}
	if id2 := in.Intern("token"); id1 != id2 {
		t.Errorf("повторный Intern должен вернуть тот же ID: %d != %d", id1, id2)
	}
	if s, ok := in.Lookup(id1); !ok || s != "token" {
		t.Errorf("Lookup вернул неверную строку: %q, ok=%v", s, ok)
	}
	if id3 := in.Intern("token="); id3 == id1 {
		t.Error("разные строки должны иметь разные ID")
	}
	if in.Len() != 3 { // "", "token", "token="
		t.Errorf("Len должен быть 3, получили: %d", in.Len())
	}
}

func TestInternerBytes(t *testing.T) {
	in := NewInterner()
	id1 := in.InternBytes([]byte("@foo"))
	id2 := in.Intern("@foo")
	if id1 != id2 {
		t.Errorf("InternBytes и Intern должны возвращать одинаковые ID: %d != %d", id1, id2)
	}
}

func TestInternerMustLookupPanics(t *testing.T) {
	in := NewInterner()
	defer func() {
		if recover() == nil {
			t.Error("MustLookup должен паниковать на невалидном ID")
		}
	}()
	in.MustLookup(StringID(999))
}
