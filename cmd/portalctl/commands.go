package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"planportal/internal/letterhead"
	"planportal/internal/model"
	"planportal/internal/portalclient"
	"planportal/internal/validation"
	"planportal/internal/verification"
)

func (a *app) loginCmd() *cobra.Command {
	var login, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with an email, mobile number or login id",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("PORTAL_PASSWORD")
			}
			s, err := a.client.SignIn(cmd.Context(), login, password)
			if err != nil {
				return err
			}
			return a.printJSON(cmd, s.User)
		},
	}
	cmd.Flags().StringVar(&login, "login", "", "email, mobile number or login id")
	cmd.Flags().StringVar(&password, "password", "", "password (defaults to $PORTAL_PASSWORD)")
	cmd.MarkFlagRequired("login")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and forget it locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.client.SignOut(cmd.Context())
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user's metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := portalclient.NewUserState(a.client)
			if err := st.Init(cmd.Context()); err != nil {
				return err
			}
			u := st.User()
			if u == nil {
				return portalclient.ErrSignedOut
			}
			return a.printJSON(cmd, u)
		},
	}
}

func (a *app) otpCmd() *cobra.Command {
	var channel, contact string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify an email address or mobile number with a one-time code",
		Long: "Sends a code to the contact and reads it from stdin. The current " +
			"session, if any, is kept even when the code belongs to another account.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flow, err := a.client.NewVerification(model.OTPChannel(channel), contact, nil)
			if err != nil {
				return err
			}
			defer flow.Close(ctx)

			if err := flow.Open(ctx); err != nil {
				return err
			}
			switch flow.State() {
			case verification.StateNoContact:
				return errors.New("no contact to verify")
			case verification.StateError:
				return flow.Err()
			}

			in := bufio.NewScanner(cmd.InOrStdin())
			for flow.State() != verification.StateVerified {
				fmt.Fprintf(cmd.ErrOrStderr(), "Enter the %d-digit code: ", flow.CodeLength())
				if !in.Scan() {
					return errors.New("no code entered")
				}
				if err := flow.Paste(ctx, in.Text()); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
				}
			}
			return a.printJSON(cmd, flow.Identity())
		},
	}
	cmd.Flags().StringVar(&channel, "channel", string(model.ChannelEmail), "email or sms")
	cmd.Flags().StringVar(&contact, "contact", "", "email address or mobile number")
	return cmd
}

func (a *app) loginIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login-id-taken LOGIN_ID",
		Short: "Check whether a login id is already registered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taken, err := a.client.LoginIDTaken(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(cmd, map[string]bool{"taken": taken})
		},
	}
}

// parseValues turns key=value arguments into form values.
func parseValues(args []string) (validation.Values, error) {
	v := validation.Values{}
	for _, arg := range args {
		k, val, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		v[k] = val
	}
	return v, nil
}

func (a *app) draftCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "draft", Short: "Manage form drafts"}
	cmd.AddCommand(
		&cobra.Command{
			Use:  "get FORM",
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := a.client.Draft(cmd.Context(), validation.FormKey(args[0]))
				if err != nil {
					return err
				}
				return a.printJSON(cmd, d)
			},
		},
		&cobra.Command{
			Use:  "save FORM key=value...",
			Args: cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				values, err := parseValues(args[1:])
				if err != nil {
					return err
				}
				d, err := a.client.SaveDraft(cmd.Context(), validation.FormKey(args[0]), values)
				if err != nil {
					return err
				}
				return a.printJSON(cmd, d)
			},
		},
		&cobra.Command{
			Use:  "delete FORM",
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.client.DeleteDraft(cmd.Context(), validation.FormKey(args[0]))
			},
		},
	)
	return cmd
}

func (a *app) projectCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "project", Short: "Manage building-plan applications"}

	var status string
	var limit, offset int
	list := &cobra.Command{
		Use: "list",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.Projects(cmd.Context(), model.ProjectStatus(status), limit, offset)
			if err != nil {
				return err
			}
			return a.printJSON(cmd, res)
		},
	}
	list.Flags().StringVar(&status, "status", "", "filter by status")
	list.Flags().IntVar(&limit, "limit", 10, "page size")
	list.Flags().IntVar(&offset, "offset", 0, "page offset")

	var title, info string
	create := &cobra.Command{
		Use: "create",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.client.CreateProject(cmd.Context(), title, rawJSON(info))
			if err != nil {
				return err
			}
			return a.printJSON(cmd, p)
		},
	}
	create.Flags().StringVar(&title, "title", "", "application title")
	create.Flags().StringVar(&info, "info", "", "project_info JSON object")

	show := &cobra.Command{
		Use:  "show ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.client.Project(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(cmd, p)
		},
	}

	var patchInfo, plot string
	patch := &cobra.Command{
		Use:   "patch ID",
		Short: "Merge project_info and/or save_plot_details into an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.client.PatchProject(cmd.Context(), args[0], model.ProjectPatch{
				ProjectInfo:     rawJSON(patchInfo),
				SavePlotDetails: rawJSON(plot),
			})
			if err != nil {
				return err
			}
			return a.printJSON(cmd, p)
		},
	}
	patch.Flags().StringVar(&patchInfo, "info", "", "project_info JSON object")
	patch.Flags().StringVar(&plot, "plot", "", "save_plot_details JSON object")

	cmd.AddCommand(list, create, show, patch)
	return cmd
}

func rawJSON(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	return json.RawMessage(s)
}

func (a *app) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Application counts per status and recent applications",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.client.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(cmd, d)
		},
	}
}

func (a *app) uploadCmd() *cobra.Command {
	var purpose string
	var replace bool
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a document; --replace swaps the profile's document for the purpose",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			name := filepath.Base(args[0])
			var f *model.StoredFile
			if replace {
				f, err = a.client.ReplaceDocument(cmd.Context(), model.DocumentPurpose(purpose), name, content)
			} else {
				f, err = a.client.Upload(cmd.Context(), model.DocumentPurpose(purpose), name, content)
			}
			if err != nil {
				return err
			}
			return a.printJSON(cmd, f)
		},
	}
	cmd.Flags().StringVar(&purpose, "purpose", "", "document purpose")
	cmd.Flags().BoolVar(&replace, "replace", false, "replace the profile document")
	cmd.MarkFlagRequired("purpose")
	return cmd
}

func (a *app) letterheadCmd() *cobra.Command {
	var c letterhead.Content
	var bodyFile, out string
	cmd := &cobra.Command{
		Use:   "letterhead",
		Short: "Render a letterhead PDF; blank header fields come from the profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if bodyFile != "" {
				b, err := os.ReadFile(bodyFile)
				if err != nil {
					return err
				}
				c.Body = strings.Split(strings.TrimRight(string(b), "\n"), "\n\n")
			}
			pdf, err := a.client.Letterhead(cmd.Context(), c)
			if err != nil {
				return err
			}
			return os.WriteFile(out, pdf, 0o644)
		},
	}
	cmd.Flags().StringVar(&c.Subject, "subject", "", "subject line")
	cmd.Flags().StringVar(&c.Reference, "reference", "", "reference number")
	cmd.Flags().StringVar(&c.Date, "date", "", "date (defaults to today)")
	cmd.Flags().StringVar(&bodyFile, "body", "", "text file; blank lines separate paragraphs")
	cmd.Flags().StringVarP(&out, "out", "o", "letterhead.pdf", "output file")
	return cmd
}
