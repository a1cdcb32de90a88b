package codec

import "testing"

func TestCheckCategory_Accepts(t *testing.T) {
	cases := []struct {
		name     string
		expected []Category
		actual   any
	}{
		{"string", []Category{CategoryString}, "hello"},
		{"bool", []Category{CategoryBool}, true},
		{"float64", []Category{CategoryNumber}, float64(1)},
		{"int64", []Category{CategoryNumber}, int64(1)},
		{"binary", []Category{CategoryBinary}, []byte{1, 2}},
		{"one-of-many", []Category{CategoryString, CategoryNumber}, float64(2)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := CheckCategory("Test", "p", c.expected, c.actual); err != nil {
				t.Fatalf("CheckCategory() = %v, want nil", err)
			}
		})
	}
}

func TestCheckCategory_RejectsMismatch(t *testing.T) {
	err := CheckCategory("Test", "p", []Category{CategoryString}, true)
	if err == nil {
		t.Fatal("expected TypeMismatch error")
	}
	codecErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error is %T, want *codec.Error", err)
	}
	if codecErr.Kind != TypeMismatch {
		t.Fatalf("Kind = %v, want TypeMismatch", codecErr.Kind)
	}
	if codecErr.TypeName != "Test" || codecErr.Property != "p" {
		t.Fatalf("TypeName/Property = %q/%q, want Test/p", codecErr.TypeName, codecErr.Property)
	}
}

func TestCheckCategory_RejectsWhenNoExpectedCategoryMatches(t *testing.T) {
	if err := CheckCategory("Test", "p", []Category{CategoryBool, CategoryNumber}, "a string"); err == nil {
		t.Fatal("expected TypeMismatch error")
	}
}
