package buffertype

import (
	"testing"

	"github.com/solatis/typecodec/internal/codec"
	"github.com/solatis/typecodec/internal/codec/slugarray"
	"github.com/solatis/typecodec/internal/codec/slugid"
)

func TestSlugIdArrayTypeRoundTrip(t *testing.T) {
	ty := NewSlugIdArray("ids")
	arr := slugarray.New()
	for i := 0; i < 3; i++ {
		raw := make([]byte, 16)
		raw[0] = byte(i)
		slug, err := slugid.Encode(raw)
		if err != nil {
			t.Fatalf("slugid.Encode: %v", err)
		}
		if err := arr.Push(slug); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}

	row := codec.Row{}
	if err := ty.Serialize(row, arr); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	got, err := ty.Deserialize(row)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if !ty.Equal(got, arr) {
		t.Fatal("round-tripped array does not equal original")
	}

	clone := ty.Clone(arr)
	if _, err := clone.Pop(); err != nil {
		t.Fatalf("Pop on clone: %v", err)
	}
	if arr.Len() != 3 {
		t.Fatal("mutating clone affected original")
	}
}
