package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/solatis/typecodec/internal/codec"
	"github.com/solatis/typecodec/internal/codec/buffertype"
	"github.com/solatis/typecodec/internal/codec/filterop"
	"github.com/solatis/typecodec/internal/codec/scalar"
	"github.com/solatis/typecodec/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Put or get a row map against the configured database",
}

var storePutCmd = &cobra.Command{
	Use:   "put <entity-id> <value>",
	Short: "Serialize a string cell and persist it under entity-id",
	Args:  cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		entityID, value := args[0], args[1]

		row := codec.Row{}
		if err := scalar.NewString("value").Serialize(row, value); err != nil {
			return err
		}

		s, err := store.Open(context.Background(), cfg.DBURL)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		if err := s.PutRow(context.Background(), entityID, row); err != nil {
			return fmt.Errorf("put row: %w", err)
		}
		fmt.Printf("stored entity %q\n", entityID)
		return nil
	},
}

var storeGetCmd = &cobra.Command{
	Use:   "get <entity-id>",
	Short: "Fetch a row map by entity id and print it as canonical JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		entityID := args[0]

		s, err := store.Open(context.Background(), cfg.DBURL)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		row, err := s.GetRow(context.Background(), entityID)
		if err != nil {
			return fmt.Errorf("get row: %w", err)
		}

		out, err := buffertype.CanonicalJSON(row)
		if err != nil {
			return fmt.Errorf("marshal row: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

var filterCategory string

var storeFilterCmd = &cobra.Command{
	Use:   "filter <property> <op> <value>",
	Short: "List entity IDs whose property satisfies op value (eq/ne/lt/le/gt/ge)",
	Args:  cobra.ExactArgs(3),
	RunE: func(c *cobra.Command, args []string) error {
		property, opToken, raw := args[0], args[1], args[2]

		op, err := parseOp(opToken)
		if err != nil {
			return err
		}
		cond, err := parseCondition(op, filterCategory, raw)
		if err != nil {
			return err
		}

		s, err := store.Open(context.Background(), cfg.DBURL)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		ids, err := s.FilterEntityIDs(context.Background(), property, cond)
		if err != nil {
			return fmt.Errorf("filter entities: %w", err)
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

func parseOp(token string) (filterop.Op, error) {
	switch token {
	case "eq":
		return filterop.Eq, nil
	case "ne":
		return filterop.Ne, nil
	case "lt":
		return filterop.Lt, nil
	case "le":
		return filterop.Le, nil
	case "gt":
		return filterop.Gt, nil
	case "ge":
		return filterop.Ge, nil
	default:
		return 0, fmt.Errorf("unknown operator %q (want one of eq/ne/lt/le/gt/ge)", token)
	}
}

func parseCondition(op filterop.Op, category, raw string) (filterop.Condition, error) {
	switch category {
	case "", "string":
		return filterop.Condition{Op: op, Operand: raw, Category: filterop.CategoryString}, nil
	case "number":
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filterop.Condition{}, fmt.Errorf("invalid number %q: %w", raw, err)
		}
		return filterop.Condition{Op: op, Operand: n, Category: filterop.CategoryNumber}, nil
	case "bool":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return filterop.Condition{}, fmt.Errorf("invalid boolean %q: %w", raw, err)
		}
		return filterop.Condition{Op: op, Operand: b, Category: filterop.CategoryBoolean}, nil
	case "date":
		return filterop.Condition{Op: op, Operand: raw, Category: filterop.CategoryDate}, nil
	case "guid":
		return filterop.Condition{Op: op, Operand: raw, Category: filterop.CategoryGuid}, nil
	default:
		return filterop.Condition{}, fmt.Errorf("unknown --category %q (want string/number/bool/date/guid)", category)
	}
}

func init() {
	storeCmd.AddCommand(storePutCmd)
	storeCmd.AddCommand(storeGetCmd)
	storeFilterCmd.Flags().StringVar(&filterCategory, "category", "string", "operand category: string, number, bool, date, or guid")
	storeCmd.AddCommand(storeFilterCmd)
}
