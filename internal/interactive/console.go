// Package interactive implements the line-oriented console for entering
// real 2024 values and comparing them against the forecasts.
package interactive

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/poverty-forecast/internal/indicators"
	"github.com/iwvelando/poverty-forecast/pkg/format"
	"github.com/iwvelando/poverty-forecast/pkg/output"
	"github.com/iwvelando/poverty-forecast/pkg/validation"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const (
	indicatorPrompt = "Indicador (número o nombre) o comando [list, show, clear <n>, quit]: "
	valuePrompt     = "Valor real 2024 (0-100): "
)

// Console reads commands and values from in and writes results to out.
type Console struct {
	in         *bufio.Scanner
	out        io.Writer
	session    *indicators.Session
	comparator *indicators.Comparator
	rows       []indicators.Indicator
	logger     *zap.Logger
	tag        language.Tag
}

// New creates a console over a session. Values already in the session are
// kept and shown.
func New(in io.Reader, out io.Writer, dataset indicators.Dataset, session *indicators.Session, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{
		in:         bufio.NewScanner(in),
		out:        out,
		session:    session,
		comparator: indicators.NewComparator(dataset, session),
		rows:       dataset.DataRows(),
		logger:     logger,
		tag:        language.English,
	}
}

// Run processes input until quit, end of input or ctx is cancelled. A
// cancelled ctx returns ctx.Err() even while waiting for a line.
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := make(chan string)
	go c.readLines(ctx, lines)

	c.printf("Ingrese valores reales 2024 para compararlos con los pronósticos.\n\n")
	c.list()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, ok := c.prompt(ctx, lines, indicatorPrompt)
		if !ok {
			return c.inputErr(ctx)
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "quit", "exit", "q":
			return nil
		case "list", "ls":
			c.list()
			continue
		case "show":
			if err := output.PrettyFormat(c.out, c.comparator.Rows(), c.tag); err != nil {
				return err
			}
			continue
		case "clear":
			c.clear(fields[1:])
			continue
		}

		ind, ok := c.resolve(line)
		if !ok {
			c.printf("Indicador desconocido: %q\n", line)
			continue
		}
		if done := c.record(ctx, lines, ind); done {
			return c.inputErr(ctx)
		}
	}
}

// readLines feeds scanned lines to the console until input ends or ctx is
// cancelled. lines is closed once Scan has returned false.
func (c *Console) readLines(ctx context.Context, lines chan<- string) {
	defer close(lines)
	for c.in.Scan() {
		select {
		case lines <- c.in.Text():
		case <-ctx.Done():
			return
		}
	}
}

func (c *Console) inputErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.in.Err()
}

func (c *Console) prompt(ctx context.Context, lines <-chan string, text string) (string, bool) {
	c.printf("%s", text)
	select {
	case <-ctx.Done():
		c.printf("\n")
		return "", false
	case line, ok := <-lines:
		if !ok {
			c.printf("\n")
			return "", false
		}
		return strings.TrimSpace(line), true
	}
}

// record asks for a value and stores it. It reports true when input ended.
func (c *Console) record(ctx context.Context, lines <-chan string, ind indicators.Indicator) bool {
	text, ok := c.prompt(ctx, lines, valuePrompt)
	if !ok {
		return true
	}
	value, err := validation.ParsePercent(text)
	if err != nil {
		c.printf("Valor rechazado: %v\n", err)
		return false
	}
	if err := c.session.RecordActual(ind.Name, value); err != nil {
		c.logger.Debug("rejected real value",
			zap.String("op", "interactive.Console.record"),
			zap.String("indicator", ind.Name),
			zap.Float64("value", value),
			zap.Error(err),
		)
		c.printf("Valor rechazado: %v\n", err)
		return false
	}
	c.summary(ind.Name)
	return false
}

func (c *Console) resolve(input string) (indicators.Indicator, bool) {
	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(c.rows) {
			return indicators.Indicator{}, false
		}
		return c.rows[n-1], true
	}
	ind, ok := c.comparator.Dataset().Find(input)
	if !ok || ind.Header {
		return indicators.Indicator{}, false
	}
	return ind, true
}

func (c *Console) clear(args []string) {
	if len(args) == 0 {
		c.session.Reset()
		c.printf("Se borraron todos los valores reales.\n")
		return
	}
	ind, ok := c.resolve(strings.Join(args, " "))
	if !ok {
		c.printf("Indicador desconocido: %q\n", strings.Join(args, " "))
		return
	}
	if c.session.ClearActual(ind.Name) {
		c.printf("Valor real borrado para %s.\n", ind.Name)
		return
	}
	c.printf("%s no tiene valor real.\n", ind.Name)
}

func (c *Console) list() {
	for i, ind := range c.rows {
		marker := ""
		if v, ok := c.session.Actual(ind.Name); ok {
			marker = " [" + format.Percent(v) + "]"
		}
		c.printf("%2d. %s%s\n", i+1, ind.Name, marker)
	}
	c.printf("\n")
}

// summary prints the comparison of one indicator after a value was recorded.
func (c *Console) summary(name string) {
	sum, err := c.comparator.Summarize(name)
	if err != nil {
		c.printf("%v\n", err)
		return
	}
	c.printf("%s\n", sum.Indicator)
	for _, cmp := range sum.Comparisons {
		line := fmt.Sprintf("  %-20s %s", cmp.Scenario.Label(), format.PercentPtr(cmp.Value))
		if cmp.Scenario != indicators.Baseline2022 {
			line += "  " + format.SignedPointsPtr(cmp.Variation)
		}
		c.printf("%s\n", line)
	}
	if sum.Range != nil {
		c.printf("  %-20s %s\n", "Rango de escenarios", sum.Range.String())
	}
	if inside, known := sum.ActualInRange(); known {
		if inside {
			c.printf("  El valor real está dentro del rango de escenarios.\n")
		} else {
			c.printf("  El valor real está fuera del rango de escenarios.\n")
		}
	}
	c.printf("\n")
}

func (c *Console) printf(msg string, args ...interface{}) {
	fmt.Fprintf(c.out, msg, args...)
}
