package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/darslik/core/generation"
	"github.com/trezcool/darslik/core/provider"
	"github.com/trezcool/darslik/core/user"
	"github.com/trezcool/darslik/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword       // mockable
	migrateFunc      = database.RunMigrations // mockable

	errHelp = errors.New("help provided")

	roleNames = map[string]string{
		"admin":   user.RoleAdmin,
		"teacher": user.RoleTeacher,
		"student": user.RoleStudent,
	}
)

type commandLine struct {
	db          *sqlx.DB
	out         io.Writer
	usrSvc      *user.Service
	providerSvc *provider.Service
	courseGen   *generation.CourseGenerator
	assistant   *generation.Assistant
}

func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Darslik administration commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)
	root.AddCommand(
		cli.migrateCmd(),
		cli.addUserCmd(),
		cli.resetPasswordCmd(),
		cli.generateCourseCmd(),
		cli.testProviderCmd(),
	)
	return root
}

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a goose command on the database: up, up-by-one, up-to, down, down-to, redo, reset, status, version, fix",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Usage()
				return errHelp
			}
			return migrateFunc(cli.db, args[0], args[1:]...)
		},
	}
}

func (cli *commandLine) addUserCmd() *cobra.Command {
	var name, uname, email string
	var roles []string

	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user, or reset the password and roles of an existing one. The password is prompted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if uname == "" && email == "" {
				_ = cmd.Usage()
				return errHelp
			}
			userRoles := make([]string, 0, len(roles))
			for _, r := range roles {
				role, ok := roleNames[strings.ToLower(r)]
				if !ok {
					return fmt.Errorf("unknown role %q", r)
				}
				userRoles = append(userRoles, role)
			}

			pwd, err := cli.promptPassword()
			if err != nil {
				return err
			}
			if pwd == "" {
				_ = cmd.Usage()
				return errHelp
			}

			usr, err := cli.usrSvc.AddOrUpdate(context.Background(), name, uname, email, pwd, userRoles)
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "user %s saved (%s)\n", usr.DisplayName(), usr.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "the user's full name")
	cmd.Flags().StringVar(&uname, "username", "", "the user's username")
	cmd.Flags().StringVar(&email, "email", "", "the user's email")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "admin, teacher or student (repeatable)")
	return cmd
}

func (cli *commandLine) resetPasswordCmd() *cobra.Command {
	var uname string

	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Reset a user's password. The password is prompted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if uname == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pwd, err := cli.promptPassword()
			if err != nil {
				return err
			}
			if pwd == "" {
				_ = cmd.Usage()
				return errHelp
			}
			_, err = cli.usrSvc.ResetPassword(context.Background(), uname, pwd)
			return err
		},
	}
	cmd.Flags().StringVar(&uname, "username", "", "the user's username or email")
	return cmd
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
