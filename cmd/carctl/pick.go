package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/pribylovaa/car-market/internal/selector"
)

const pickHelp = `commands:
  +        next page
  /text    search (empty - reset)
  N        select item N
  *        select "all"
  q        quit`

func (c *cli) pickCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Интерактивный выбор марки или модели",
		Long:  "Интерактивный выбор из справочника через stdin.\n\n" + pickHelp,
	}

	cmd.AddCommand(c.pickBrandCmd(), c.pickModelCmd())

	return cmd
}

func (c *cli) pickBrandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "brand",
		Short: "Выбрать марку",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPickPrinter(cmd.OutOrStdout())

			sel := selector.NewBrand(c.app.catalog, c.selectorOptions(p))
			defer sel.Close()

			if err := sel.Load(cmd.Context()); err != nil {
				return err
			}

			return runPick(cmd.Context(), cmd.InOrStdin(), p, sel.Selector)
		},
	}
}

func (c *cli) pickModelCmd() *cobra.Command {
	var brand string

	cmd := &cobra.Command{
		Use:   "model",
		Short: "Выбрать модель (всех марок или одной)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPickPrinter(cmd.OutOrStdout())

			sel := selector.NewModel(c.app.catalog, c.selectorOptions(p))
			defer sel.Close()

			var err error
			if brand == "" || brand == selector.All {
				err = sel.Load(cmd.Context())
			} else {
				err = sel.SetBrand(cmd.Context(), brand)
			}
			if err != nil {
				return err
			}

			return runPick(cmd.Context(), cmd.InOrStdin(), p, sel.Selector)
		},
	}

	cmd.Flags().StringVar(&brand, "brand", "", "brand to take models from")

	return cmd
}

func (c *cli) selectorOptions(p *pickPrinter) selector.Options {
	sc := c.app.cfg.Selector

	return selector.Options{
		PageSize:        sc.PageSize,
		Debounce:        sc.Debounce,
		ScrollThreshold: sc.ScrollThreshold,
		OnUpdate:        p.onUpdate,
		Metrics:         c.app.metrics,
	}
}

// runPick читает команды построчно до выбора, q или EOF.
func runPick(ctx context.Context, in io.Reader, p *pickPrinter, sel *selector.Selector) error {
	var cancelSearch func()
	defer func() {
		if cancelSearch != nil {
			cancelSearch()
		}
	}()

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "q":
			return nil

		case line == "+" || line == "":
			// Конец списка уже виден: расстояние до низа 0.
			started, err := sel.OnScroll(ctx, 0, 0, 0)
			if err != nil {
				return err
			}
			if !started {
				p.println("no more items")
			}

		case strings.HasPrefix(line, "/"):
			cancelSearch = sel.SetSearch(ctx, strings.TrimPrefix(line, "/"))

		case line == "*":
			sel.Select(selector.All)
			p.println("selected: " + selector.All)
			return nil

		default:
			n, err := strconv.Atoi(line)
			items := sel.State().Items
			if err != nil || n < 1 || n > len(items) {
				p.println(pickHelp)
				continue
			}

			p.println("selected: " + sel.Select(items[n-1]))
			return nil
		}
	}

	return sc.Err()
}

// pickPrinter печатает список после каждой завершённой загрузки.
// OnUpdate приходит и из горутины отложенного поиска, поэтому вывод под мьютексом.
type pickPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	loading bool
}

func newPickPrinter(w io.Writer) *pickPrinter {
	return &pickPrinter{w: w}
}

func (p *pickPrinter) onUpdate(st selector.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if st.Loading {
		p.loading = true
		return
	}
	if !p.loading {
		return
	}
	p.loading = false

	if st.Search != "" {
		fmt.Fprintf(p.w, "search %q:\n", st.Search)
	}
	for i, it := range st.Items {
		fmt.Fprintf(p.w, "%3d. %s\n", i+1, it)
	}
	if st.HasMore {
		fmt.Fprintln(p.w, "  ... (+ for more)")
	}
}

func (p *pickPrinter) println(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.w, s)
}
