package main

import (
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/spf13/cobra"

	migrations "github.com/dropDatabas3/provisioner/migrations/postgres"
)

// newSchemaCmd imprime el DDL embebido. No necesita config ni credenciales.
func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Imprime el SQL de la tabla de perfiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := fs.ReadDir(migrations.ProfilesFS, migrations.ProfilesDir)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(entries))
			for _, e := range entries {
				if !e.IsDir() {
					names = append(names, e.Name())
				}
			}
			sort.Strings(names)
			for _, n := range names {
				b, err := fs.ReadFile(migrations.ProfilesFS, path.Join(migrations.ProfilesDir, n))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "-- %s\n%s\n", n, b)
			}
			return nil
		},
	}
}
