package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/solatis/typecodec/internal/codec"
	"github.com/solatis/typecodec/internal/codec/buffertype"
	"github.com/solatis/typecodec/internal/codec/scalar"
)

var encodeCmd = &cobra.Command{
	Use:   "encode <type> <value>",
	Short: "Serialize a scalar value into a row map and print it as canonical JSON",
	Args:  cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		typeName, value := args[0], args[1]
		row := codec.Row{}

		if err := encodeInto(row, typeName, value); err != nil {
			return err
		}

		out, err := buffertype.CanonicalJSON(map[string]any(row))
		if err != nil {
			return fmt.Errorf("marshal row: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

func encodeInto(row codec.Row, typeName, value string) error {
	const property = "value"

	switch typeName {
	case "string":
		return scalar.NewString(property).Serialize(row, value)
	case "boolean":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q: %w", value, err)
		}
		return scalar.NewBoolean(property).Serialize(row, b)
	case "number":
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", value, err)
		}
		return scalar.NewNumber(property).Serialize(row, n)
	case "positiveinteger":
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid integer %q: %w", value, err)
		}
		return scalar.NewPositiveInteger(property).Serialize(row, n)
	case "date":
		t, err := time.Parse(time.RFC3339Nano, value)
		if err != nil {
			return fmt.Errorf("invalid date %q (want RFC3339): %w", value, err)
		}
		return scalar.NewDate(property).Serialize(row, t)
	case "uuid":
		id, err := uuid.Parse(value)
		if err != nil {
			return fmt.Errorf("invalid uuid %q: %w", value, err)
		}
		return scalar.NewUUID(property).Serialize(row, id)
	case "slugid":
		return scalar.NewSlugId(property).Serialize(row, value)
	default:
		return fmt.Errorf("unknown type %q (want one of string, boolean, number, positiveinteger, date, uuid, slugid)", typeName)
	}
}
