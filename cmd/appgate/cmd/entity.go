package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sentinel-Gate/appgate/internal/adapter/outbound/backend"
)

var (
	entitySort   string
	entityData   string
	entityOutput string
)

var entityCmd = &cobra.Command{
	Use:   "entity",
	Short: "Read and write application entities",
	Long: `Generic CRUD on the application's entities
(/apps/{app_id}/entities/{name}).

Examples:
  appgate entity list todos --sort -created_at
  appgate entity get todos 42
  appgate entity create todos --data '{"title":"write docs"}'
  echo '{"done":true}' | appgate entity update todos 42 --data -
  appgate entity delete todos 42`,
}

func init() {
	entityCmd.PersistentFlags().StringVarP(&entityOutput, "output", "o", "json", "output format: json or yaml")

	list := &cobra.Command{
		Use:   "list NAME",
		Short: "List records",
		Args:  cobra.ExactArgs(1),
		RunE: entityRun(func(cmd *cobra.Command, e *backend.EntityClient, args []string) (any, error) {
			return e.List(cmd.Context(), entitySort)
		}),
	}
	list.Flags().StringVar(&entitySort, "sort", "", "sort expression passed to the backend")

	get := &cobra.Command{
		Use:   "get NAME ID",
		Short: "Get one record",
		Args:  cobra.ExactArgs(2),
		RunE: entityRun(func(cmd *cobra.Command, e *backend.EntityClient, args []string) (any, error) {
			return e.Get(cmd.Context(), args[1])
		}),
	}

	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a record",
		Args:  cobra.ExactArgs(1),
		RunE: entityRun(func(cmd *cobra.Command, e *backend.EntityClient, args []string) (any, error) {
			data, err := readRecord(cmd.InOrStdin(), entityData)
			if err != nil {
				return nil, err
			}
			return e.Create(cmd.Context(), data)
		}),
	}

	update := &cobra.Command{
		Use:   "update NAME ID",
		Short: "Replace a record",
		Args:  cobra.ExactArgs(2),
		RunE: entityRun(func(cmd *cobra.Command, e *backend.EntityClient, args []string) (any, error) {
			data, err := readRecord(cmd.InOrStdin(), entityData)
			if err != nil {
				return nil, err
			}
			return e.Update(cmd.Context(), args[1], data)
		}),
	}

	del := &cobra.Command{
		Use:   "delete NAME ID",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(2),
		RunE: entityRun(func(cmd *cobra.Command, e *backend.EntityClient, args []string) (any, error) {
			return e.Delete(cmd.Context(), args[1])
		}),
	}

	for _, c := range []*cobra.Command{create, update} {
		c.Flags().StringVar(&entityData, "data", "", "record as JSON, or - to read it from stdin")
		_ = c.MarkFlagRequired("data")
	}

	entityCmd.AddCommand(list, get, create, update, del)
	rootCmd.AddCommand(entityCmd)
}

// entityRun wires the app, runs fn against the named entity and prints its
// result.
func entityRun(fn func(cmd *cobra.Command, e *backend.EntityClient, args []string) (any, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		format := entityOutput
		if format != "json" && format != "yaml" {
			return fmt.Errorf("unknown output format %q (want json or yaml)", format)
		}

		ctx, stop := signalContext()
		defer stop()
		cmd.SetContext(ctx)

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		result, err := fn(cmd, a.client.Entity(a.cfg.AppID, args[0]), args)
		if err != nil {
			return err
		}
		return writeStructured(cmd.OutOrStdout(), format, result)
	}
}

// readRecord parses a JSON object from data, or from r when data is "-".
func readRecord(r io.Reader, data string) (backend.Record, error) {
	raw := []byte(data)
	if data == "-" {
		var err error
		raw, err = io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
	}
	var rec backend.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("record must be a JSON object: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("record must be a JSON object")
	}
	return rec, nil
}
