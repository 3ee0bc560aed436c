package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/listenupapp/recipebox-server/internal/di"
	"github.com/listenupapp/recipebox-server/internal/service"
)

// Terminal access, swapped out in tests.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

func createSuperuserCmd() *cli.Command {
	return &cli.Command{
		Name:  "create-superuser",
		Usage: "Create an account with staff and superuser rights",
		Description: `Prompts for the password on a terminal. When stdin is not a
terminal the first line of input is used as the password.`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Usage: "login email", Required: true},
			&cli.StringFlag{Name: "name", Usage: "display name", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			password, err := newPassword(cmd.Root().Reader, cmd.Root().Writer)
			if err != nil {
				return err
			}

			injector := di.NewContainer(cfg)
			defer func() { _ = injector.Shutdown() }()
			if err := di.Bootstrap(injector); err != nil {
				return err
			}

			users := do.MustInvoke[*service.UserService](injector)
			user, err := users.CreateSuperuser(ctx, service.RegisterRequest{
				Email:    cmd.String("email"),
				Name:     cmd.String("name"),
				Password: password,
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.Root().Writer, "Superuser %s created with id %d\n", user.Email, user.ID)
			return err
		},
	}
}

// newPassword reads a password, asking twice on a terminal.
func newPassword(r io.Reader, w io.Writer) (string, error) {
	if f, ok := r.(*os.File); ok && isTerminal(int(f.Fd())) {
		first, err := promptSecret(f, w, "Password: ")
		if err != nil {
			return "", err
		}
		second, err := promptSecret(f, w, "Password (again): ")
		if err != nil {
			return "", err
		}
		if first != second {
			return "", errors.New("passwords do not match")
		}
		return first, nil
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func promptSecret(f *os.File, w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return "", err
	}
	b, err := readPassword(int(f.Fd()))
	_, _ = fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}
