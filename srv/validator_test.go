package srv

import (
	"testing"

	"yoink.exe.dev/dictionary"
)

func testDict() dictionary.Set {
	return dictionary.FromWords([]string{"CAT", "CATS", "AT", "RATS"})
}

func TestValidatorResolveTooShort(t *testing.T) {
	v := newValidator(testDict(), 3)
	b := &Bank{}
	b.Append('A')
	b.Append('T')
	if _, err := v.resolve(b, "AT", nil); err == nil || err.Code != ErrTooShort {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}
}

func TestValidatorResolveNonAlphaTakesPrecedenceOverLength(t *testing.T) {
	v := newValidator(testDict(), 3)
	b := &Bank{}
	if _, err := v.resolve(b, "A-", nil); err == nil || err.Code != ErrNotAWord {
		t.Fatalf("a too-short word with a non-letter character should report ErrNotAWord, got %v", err)
	}
}

func TestValidatorResolveNotAWord(t *testing.T) {
	v := newValidator(testDict(), 2)
	b := &Bank{}
	for _, l := range []Letter{'X', 'Y', 'Z'} {
		b.Append(l)
	}
	if _, err := v.resolve(b, "XYZ", nil); err == nil || err.Code != ErrNotAWord {
		t.Fatalf("expected ErrNotAWord, got %v", err)
	}
}

func TestValidatorResolveNotInBank(t *testing.T) {
	v := newValidator(testDict(), 2)
	b := &Bank{}
	b.Append('A')
	b.Append('T')
	// "CAT" is a dictionary word but not spellable from this bank.
	if _, err := v.resolve(b, "CAT", nil); err == nil || err.Code != ErrNotInBank {
		t.Fatalf("expected ErrNotInBank, got %v", err)
	}
}

func TestValidatorResolveReconstructsIndices(t *testing.T) {
	v := newValidator(testDict(), 2)
	b := &Bank{}
	for _, l := range []Letter{'C', 'A', 'T'} {
		b.Append(l)
	}
	indices, err := v.resolve(b, "cat", nil)
	if err != nil {
		t.Fatalf("resolve should succeed for a spellable dictionary word: %v", err)
	}
	if len(indices) != 3 {
		t.Fatalf("expected 3 resolved indices, got %v", indices)
	}
}

func TestValidatorResolveExplicitIndicesMustSpellExactly(t *testing.T) {
	v := newValidator(testDict(), 2)
	b := &Bank{}
	for _, l := range []Letter{'C', 'A', 'T', 'S'} {
		b.Append(l)
	}
	if _, err := v.resolve(b, "CAT", []int{0, 2, 1}); err == nil || err.Code != ErrNotInBank {
		t.Fatalf("explicit indices spelling a different word should be ErrNotInBank, got %v", err)
	}
}
