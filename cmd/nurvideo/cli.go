package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/nurvideo/gallery/internal/lib/upload"
	"github.com/nurvideo/gallery/internal/models"
)

const usage = `usage: nurvideo [--config path] <command> [flags]

commands:
  login         --identity ID [--secret S]    open session (secret is asked when omitted)
  logout                                      close session
  whoami                                      show session identity
  categories    [--lang en|id]                list categories
  list          [--category C]                list videos, most recent first
  upload        --file F [--name N] [--category C]
  delete        --id ID --path KEY [--yes]
  url           --path KEY                    streaming url
  download-url  --path KEY                    download url valid for 60s
`

var (
	errUsage        = errors.New("usage")
	errNotLoggedIn  = errors.New("not logged in, run nurvideo login")
	errInvalidLogin = errors.New("invalid credentials")
	errCancelled    = errors.New("cancelled")
)

type Gate interface {
	Login(identity, secret string) bool
	Logout()
	Authenticated() bool
	Identity() (string, bool)
}

type Videos interface {
	Upload(ctx context.Context, blob *models.Blob, name string, category models.Category) (models.Video, error)
	List(ctx context.Context, category models.Category) ([]models.Video, error)
	Delete(ctx context.Context, id, storagePath string) error
	StreamingURL(storagePath string) string
	DownloadURL(ctx context.Context, storagePath string) (string, error)
}

type cli struct {
	gate   Gate
	videos Videos
	in     io.Reader
	out    io.Writer
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	cmd, args := args[0], args[1:]

	switch cmd {
	case "login":
		return c.login(args)
	case "logout":
		c.gate.Logout()
		fmt.Fprintln(c.out, "logged out")
		return nil
	case "whoami":
		return c.whoami()
	case "categories":
		return c.categories(args)
	case "list":
		return c.list(ctx, args)
	case "upload":
		return c.upload(ctx, args)
	case "delete":
		return c.delete(ctx, args)
	case "url":
		return c.url(args)
	case "download-url":
		return c.downloadURL(ctx, args)
	case "help", "-h", "--help":
		fmt.Fprint(c.out, usage)
		return nil
	}

	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (c *cli) login(args []string) error {
	fs := newFlagSet("login")
	identity := fs.String("identity", "", "")
	secret := fs.String("secret", "", "")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	if *identity == "" {
		return fmt.Errorf("%w: identity required", errUsage)
	}
	if *secret == "" {
		s, err := c.prompt("secret: ")
		if err != nil {
			return err
		}
		*secret = s
	}

	if !c.gate.Login(*identity, *secret) {
		return errInvalidLogin
	}

	fmt.Fprintf(c.out, "logged in as %s\n", *identity)
	return nil
}

func (c *cli) whoami() error {
	identity, ok := c.gate.Identity()
	if !ok {
		return errNotLoggedIn
	}

	fmt.Fprintln(c.out, identity)
	return nil
}

func (c *cli) categories(args []string) error {
	fs := newFlagSet("categories")
	lang := fs.String("lang", os.Getenv("LANG"), "")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	// LANG looks like en_US.UTF-8
	tag := models.LabelLanguage(strings.ReplaceAll(strings.SplitN(*lang, ".", 2)[0], "_", "-"))

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	for _, cat := range models.Categories {
		fmt.Fprintf(w, "%s\t%s\n", cat, cat.Label(tag))
	}
	return w.Flush()
}

func (c *cli) list(ctx context.Context, args []string) error {
	fs := newFlagSet("list")
	raw := fs.String("category", "", "")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	category, err := models.ParseCategory(*raw)
	if err != nil {
		return err
	}

	videos, err := c.videos.List(ctx, category)
	if err != nil {
		return err
	}

	if len(videos) == 0 {
		fmt.Fprintln(c.out, "no videos")
		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tSIZE\tUPDATED\tPATH")
	for _, v := range videos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, v.Name, v.Category, humanSize(v.Size),
			v.UpdatedAt.Local().Format(time.DateTime), v.StoragePath)
	}
	return w.Flush()
}

func (c *cli) upload(ctx context.Context, args []string) error {
	fs := newFlagSet("upload")
	path := fs.String("file", "", "")
	name := fs.String("name", "", "")
	raw := fs.String("category", "", "")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if *path == "" {
		return fmt.Errorf("%w: file required", errUsage)
	}

	if !c.gate.Authenticated() {
		return errNotLoggedIn
	}

	category, err := models.ParseCategory(*raw)
	if err != nil {
		return err
	}

	file, err := os.Open(*path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	filename := filepath.Base(*path)
	if strings.TrimSpace(*name) == "" {
		*name = filename
	}

	contentType, err := upload.Check(*name, info.Size(), "", file)
	if err != nil {
		return err
	}

	video, err := c.videos.Upload(ctx, &models.Blob{
		Filename:    filename,
		ContentType: contentType,
		Size:        info.Size(),
		Body:        file,
	}, *name, category)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "uploaded %s\nid:   %s\npath: %s\n", video.Name, video.ID, video.StoragePath)
	return nil
}

func (c *cli) delete(ctx context.Context, args []string) error {
	fs := newFlagSet("delete")
	id := fs.String("id", "", "")
	path := fs.String("path", "", "")
	yes := fs.Bool("yes", false, "")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if *id == "" || *path == "" {
		return fmt.Errorf("%w: id and path required", errUsage)
	}

	if !c.gate.Authenticated() {
		return errNotLoggedIn
	}

	if !*yes {
		answer, err := c.prompt(fmt.Sprintf("delete %s? [y/N] ", *path))
		if err != nil {
			return err
		}
		if a := strings.ToLower(answer); a != "y" && a != "yes" {
			return errCancelled
		}
	}

	if err := c.videos.Delete(ctx, *id, *path); err != nil {
		return err
	}

	fmt.Fprintln(c.out, "deleted")
	return nil
}

func (c *cli) url(args []string) error {
	fs := newFlagSet("url")
	path := fs.String("path", "", "")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if *path == "" {
		return fmt.Errorf("%w: path required", errUsage)
	}

	fmt.Fprintln(c.out, c.videos.StreamingURL(*path))
	return nil
}

func (c *cli) downloadURL(ctx context.Context, args []string) error {
	fs := newFlagSet("download-url")
	path := fs.String("path", "", "")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if *path == "" {
		return fmt.Errorf("%w: path required", errUsage)
	}

	link, err := c.videos.DownloadURL(ctx, *path)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, link)
	return nil
}

// prompt reads one line from input.
func (c *cli) prompt(question string) (string, error) {
	fmt.Fprint(c.out, question)

	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}
