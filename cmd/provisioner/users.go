package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/provisioner/internal/domain/repository"
	"github.com/dropDatabas3/provisioner/internal/provision"
)

func newUsersCmd(a *app) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Operaciones sobre usuarios (cuenta + perfil)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	usersCmd.AddCommand(
		newCreateCmd(a),
		newGetCmd(a),
		newDeleteCmd(a),
		newMagicLinkCmd(a),
	)
	return usersCmd
}

func newCreateCmd(a *app) *cobra.Command {
	var (
		email, pwd, userType string
		firstName, lastName  string
		extra                []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Crea la cuenta (email confirmado) y la fila de perfil",
		RunE: func(cmd *cobra.Command, args []string) error {
			attrs, err := buildAttributes(userType, firstName, lastName, extra)
			if err != nil {
				return err
			}
			if pwd == "" {
				if pwd, err = promptPassword(cmd.ErrOrStderr()); err != nil {
					return err
				}
			}

			user, err := a.prov.CreateAdminUser(cmd.Context(), email, pwd, attrs)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), map[string]any{
				"id":                 user.ID,
				"email":              user.Email,
				"email_confirmed_at": user.EmailConfirmedAt,
				"created_at":         user.CreatedAt,
			}, fmt.Sprintf("created user %s (%s)", user.ID, user.Email))
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email de la cuenta")
	cmd.Flags().StringVar(&pwd, "password", "", "Password (si falta se pide por terminal)")
	cmd.Flags().StringVar(&userType, "user-type", "admin", "Tipo de usuario del perfil")
	cmd.Flags().StringVar(&firstName, "first-name", "", "Nombre")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Apellido")
	cmd.Flags().StringArrayVar(&extra, "attr", nil, "Atributo extra del perfil k=v (repetible)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Muestra la fila de perfil por email",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.prov.LookupProfile(cmd.Context(), email)
			if err != nil {
				if repository.IsNotFound(err) {
					return fmt.Errorf("no profile for %s", email)
				}
				return err
			}
			row := rec.Row()
			return a.print(cmd.OutOrStdout(), row, formatRow(row))
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email del perfil")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var (
		email string
		purge bool
	)
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Borra el perfil y opcionalmente la cuenta del provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.prov.RemoveProfile(cmd.Context(), email, purge)
			if err != nil {
				if repository.IsNotFound(err) && rec == nil {
					return fmt.Errorf("no profile for %s", email)
				}
				return err
			}
			text := fmt.Sprintf("removed profile %s (id %s)", rec.Email, rec.ID)
			if purge {
				text += "\nremoved account " + rec.ID
			} else {
				text += fmt.Sprintf("\naccount %s kept; rerun with --purge-account to delete it", rec.ID)
			}
			return a.print(cmd.OutOrStdout(), map[string]any{
				"id":             rec.ID,
				"email":          rec.Email,
				"account_purged": purge,
			}, text)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email del perfil")
	cmd.Flags().BoolVar(&purge, "purge-account", false, "Borrar también la cuenta del provider (después del perfil)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newMagicLinkCmd(a *app) *cobra.Command {
	var (
		email, redirect string
		create          bool
	)
	cmd := &cobra.Command{
		Use:   "magic-link",
		Short: "Envía un link de login de un solo uso",
		RunE: func(cmd *cobra.Command, args []string) error {
			if redirect == "" {
				redirect = a.cfg.MagicLink.RedirectURL
			}
			if err := a.prov.SendMagicLink(cmd.Context(), email, redirect, create); err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), map[string]any{
				"email": email,
				"sent":  true,
			}, "magic link sent to "+email)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email destino")
	cmd.Flags().StringVar(&redirect, "redirect", "", "URL de redirect (default magic_link.redirect_url)")
	cmd.Flags().BoolVar(&create, "create-account", true, "Permitir que el provider cree la cuenta si no existe")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// buildAttributes arma los atributos del perfil. --attr no puede pisar los
// atributos que tienen flag propio.
func buildAttributes(userType, firstName, lastName string, extra []string) (provision.ProfileAttributes, error) {
	attrs := provision.ProfileAttributes{
		provision.AttrUserType:  userType,
		provision.AttrFirstName: firstName,
		provision.AttrLastName:  lastName,
	}
	for _, kv := range extra {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("--attr %q: expected key=value", kv)
		}
		if _, dup := attrs[k]; dup {
			return nil, fmt.Errorf("--attr %q: %s is already set", kv, k)
		}
		attrs[k] = v
	}
	return attrs, nil
}

// print escribe v como JSON indentado o el texto plano según --out.
func (a *app) print(w io.Writer, v any, text string) error {
	if a.out == "json" {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

// formatRow key=value por línea, ordenado.
func formatRow(row map[string]any) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = fmt.Sprintf("%s=%v", k, row[k])
	}
	return strings.Join(lines, "\n")
}
