package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/gophdrive/internal/common"
)

func (a *App) credentials() (string, string, error) {
	login, err := GetSimpleText(a.reader, "Enter login", a.out)
	if err != nil {
		return "", "", err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return "", "", err
	}
	return login, password, nil
}

func (a *App) register(ctx context.Context) {
	login, password, err := a.credentials()
	if err != nil {
		fmt.Fprintf(a.out, "Input error: %v\n", err)
		return
	}

	if err := a.client.Register(ctx, login, password); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			fmt.Fprintln(a.out, "This login is already registered")
			return
		}
		fmt.Fprintf(a.out, "Registration failed: %v\n", err)
		return
	}

	a.userName = login
	fmt.Fprintln(a.out, "Registered and logged in")
}

func (a *App) login(ctx context.Context) {
	login, password, err := a.credentials()
	if err != nil {
		fmt.Fprintf(a.out, "Input error: %v\n", err)
		return
	}

	if err := a.client.Login(ctx, login, password); err != nil {
		if errors.Is(err, common.ErrorInvalidCredentials) {
			fmt.Fprintln(a.out, "Invalid login or password")
			return
		}
		fmt.Fprintf(a.out, "Login failed: %v\n", err)
		return
	}

	a.userName = login
	fmt.Fprintln(a.out, "Logged in")
}

func (a *App) logout(ctx context.Context) {
	if err := a.client.Logout(ctx); err != nil {
		fmt.Fprintf(a.out, "Logout failed: %v\n", err)
		return
	}
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out")
}

func (a *App) list(ctx context.Context) {
	files, err := a.client.List(ctx)
	if err != nil {
		a.reportError(err)
		return
	}
	if len(files) == 0 {
		fmt.Fprintln(a.out, "No files")
		return
	}
	for _, name := range files {
		fmt.Fprintln(a.out, name)
	}
}

func (a *App) stat(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: stat <name>")
		return
	}

	info, err := a.client.Stat(ctx, args[0])
	if err != nil {
		a.reportError(err)
		return
	}
	fmt.Fprintf(a.out, "%s\t%d bytes\tmodified %s\n", info.Name, info.Size, info.Modified)
}

func (a *App) upload(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: upload <path>")
		return
	}

	f, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(a.out, "Cannot open %s: %v\n", args[0], err)
		return
	}
	defer f.Close()

	name := filepath.Base(args[0])
	if err := a.client.Upload(ctx, name, f); err != nil {
		a.reportError(err)
		return
	}
	fmt.Fprintf(a.out, "Uploaded %s\n", name)
}

func (a *App) download(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(a.out, "Usage: download <name> <path>")
		return
	}

	f, err := os.Create(args[1])
	if err != nil {
		fmt.Fprintf(a.out, "Cannot create %s: %v\n", args[1], err)
		return
	}
	defer f.Close()

	if err := a.client.Download(ctx, args[0], f); err != nil {
		a.reportError(err)
		return
	}
	fmt.Fprintf(a.out, "Downloaded %s to %s\n", args[0], args[1])
}

func (a *App) delete(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: delete <name>")
		return
	}

	if err := a.client.Delete(ctx, args[0]); err != nil {
		a.reportError(err)
		return
	}
	fmt.Fprintf(a.out, "Deleted %s\n", args[0])
}

func (a *App) reportError(err error) {
	switch {
	case errors.Is(err, common.ErrorInvalidSession):
		fmt.Fprintln(a.out, "Session expired, please log in again")
	case errors.Is(err, common.ErrorNotFound):
		fmt.Fprintln(a.out, "File not found")
	case errors.Is(err, common.ErrorInvalidFilename):
		fmt.Fprintln(a.out, "Invalid filename")
	case errors.Is(err, common.ErrorAccessDenied):
		fmt.Fprintln(a.out, "Access denied")
	default:
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
}
