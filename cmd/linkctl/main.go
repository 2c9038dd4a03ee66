// Command linkctl drives the link API from a terminal with the same client
// the web UI uses.
//
//	linkctl [-conf file] [-token t] <command> [flags]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"linkboard/internal/apiclient"
	"linkboard/internal/config"
	"linkboard/internal/domain"
	"linkboard/internal/service"

	"go.uber.org/zap"
)

var errUsage = errors.New("usage")

const usage = `usage: linkctl [-conf file] [-token token] [-v] <command> [flags]

commands:
  shorten   -url URL [-alias A] [-title T] [-description D]
  list      [-page N] [-size N] [-sort field] [-dir asc|desc]
  get       ID
  update    ID [-url URL] [-alias A] [-title T] [-description D]
  delete    ID
  toggle    ID
  search    QUERY
  top       [-limit N]
  recent    [-days N]
  analytics ID [-days N]
  bulk      -file PATH (one URL per line, - for stdin)
  stats
  qr        ID
`

// cli holds what every command needs
type cli struct {
	links *service.LinkService
	stats *service.DashboardService
	qr    *service.QRService
	cred  apiclient.Credential
	out   io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "linkctl:", apiclient.Message(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("linkctl", flag.ContinueOnError)
	conf := fs.String("conf", "", "optional config file")
	token := fs.String("token", "", "bearer token (default $API_TOKEN)")
	verbose := fs.Bool("v", false, "log requests to stderr")
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	cfg, err := config.Load(*conf)
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if *verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
		defer logger.Sync()
	}

	client, err := apiclient.New(cfg.APIBaseURL, logger, apiclient.WithTimeout(cfg.HTTPClientTimeout))
	if err != nil {
		return err
	}

	tok := *token
	if tok == "" {
		tok = cfg.APIToken
	}
	c := &cli{
		links: service.NewLinkService(client),
		stats: service.NewDashboardService(client),
		qr:    service.NewQRService(client.BaseURL()),
		cred:  apiclient.Anonymous,
		out:   out,
	}
	if tok != "" {
		c.cred = apiclient.NewStaticCredential(tok)
	}

	return c.dispatch(ctx, fs.Arg(0), fs.Args()[1:])
}

func (c *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "shorten":
		return c.shorten(ctx, args)
	case "list":
		return c.list(ctx, args)
	case "get":
		return c.withID(args, func(id int64) error {
			link, err := c.links.Get(ctx, c.cred, id)
			return c.print(link, err)
		})
	case "update":
		return c.update(ctx, args)
	case "delete":
		return c.withID(args, func(id int64) error {
			return c.done(c.links.Delete(ctx, c.cred, id), "deleted %d", id)
		})
	case "toggle":
		return c.withID(args, func(id int64) error {
			return c.done(c.links.Toggle(ctx, c.cred, id), "toggled %d", id)
		})
	case "search":
		if len(args) == 0 {
			return errUsage
		}
		links, err := c.links.Search(ctx, c.cred, strings.Join(args, " "))
		return c.print(links, err)
	case "top":
		fs := flag.NewFlagSet("top", flag.ContinueOnError)
		limit := fs.Int("limit", service.DefaultTopLimit, "number of links")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		links, err := c.links.Top(ctx, c.cred, *limit)
		return c.print(links, err)
	case "recent":
		fs := flag.NewFlagSet("recent", flag.ContinueOnError)
		days := fs.Int("days", service.DefaultRecentDays, "look-back window")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		links, err := c.links.Recent(ctx, c.cred, *days)
		return c.print(links, err)
	case "analytics":
		return c.analytics(ctx, args)
	case "bulk":
		return c.bulk(ctx, args)
	case "stats":
		stats, err := c.stats.Stats(ctx, c.cred)
		return c.print(stats, err)
	case "qr":
		return c.withID(args, func(id int64) error {
			return c.print(map[string]string{
				"image":    c.qr.ImageURL(id),
				"download": c.qr.DownloadURL(id),
			}, nil)
		})
	}
	return errUsage
}

// linkFlags registers the create/update fields on fs
func linkFlags(fs *flag.FlagSet) (u, alias, title, desc *string) {
	u = fs.String("url", "", "long URL")
	alias = fs.String("alias", "", "custom alias")
	title = fs.String("title", "", "title")
	desc = fs.String("description", "", "description")
	return
}

func (c *cli) shorten(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("shorten", flag.ContinueOnError)
	u, alias, title, desc := linkFlags(fs)
	if err := fs.Parse(args); err != nil || *u == "" {
		return errUsage
	}
	link, err := c.links.Create(ctx, c.cred, domain.CreateLinkRequest{
		OriginalURL: *u,
		CustomAlias: *alias,
		Title:       *title,
		Description: *desc,
	})
	return c.print(link, err)
}

func (c *cli) update(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	u, alias, title, desc := linkFlags(fs)
	if err := fs.Parse(args[1:]); err != nil {
		return errUsage
	}
	link, err := c.links.Update(ctx, c.cred, id, domain.UpdateLinkRequest{
		OriginalURL: *u,
		CustomAlias: *alias,
		Title:       *title,
		Description: *desc,
	})
	return c.print(link, err)
}

func (c *cli) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	page := fs.Int("page", service.DefaultPage, "zero-based page")
	size := fs.Int("size", service.DefaultPageSize, "page size")
	sortBy := fs.String("sort", service.DefaultSortBy, "sort field")
	dir := fs.String("dir", service.DefaultSortDir, "sort direction")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	p, err := c.links.List(ctx, c.cred, service.ListParams{Page: *page, Size: *size, SortBy: *sortBy, SortDir: *dir})
	return c.print(p, err)
}

func (c *cli) analytics(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("analytics", flag.ContinueOnError)
	days := fs.Int("days", service.DefaultAnalyticsDays, "look-back window")
	if err := fs.Parse(args[1:]); err != nil {
		return errUsage
	}
	a, err := c.links.Analytics(ctx, c.cred, id, *days)
	return c.print(a, err)
}

func (c *cli) bulk(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bulk", flag.ContinueOnError)
	file := fs.String("file", "", "file with one URL per line, - for stdin")
	if err := fs.Parse(args); err != nil || *file == "" {
		return errUsage
	}

	var data []byte
	var err error
	if *file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(*file)
	}
	if err != nil {
		return err
	}

	var reqs []domain.CreateLinkRequest
	for _, line := range strings.Split(string(data), "\n") {
		if u := strings.TrimSpace(line); u != "" {
			reqs = append(reqs, domain.CreateLinkRequest{OriginalURL: u})
		}
	}
	if len(reqs) == 0 {
		return fmt.Errorf("%s: no URLs", *file)
	}
	links, err := c.links.BulkCreate(ctx, c.cred, reqs)
	return c.print(links, err)
}

func (c *cli) withID(args []string, fn func(int64) error) error {
	if len(args) != 1 {
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return fn(id)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%q: %w", s, domain.ErrInvalidID)
	}
	return id, nil
}

func (c *cli) print(v any, err error) error {
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) done(err error, format string, args ...any) error {
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.out, format+"\n", args...)
	return err
}
