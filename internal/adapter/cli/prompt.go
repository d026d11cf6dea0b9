package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"currency-exchange-cli/internal/domain/ports"
	"currency-exchange-cli/internal/service"
	"currency-exchange-cli/pkg/logger"
	"currency-exchange-cli/pkg/utils"

	"github.com/fatih/color"
	"golang.org/x/term"
)

const menu = `
Put:
1 - to exchange currencies.
2 - to view available currencies and their current exchange rates (to USD).
3 - to refresh the API key.
0 - to exit.`

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	resultColor  = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
)

// Prompt is the interactive menu loop. It parses input and hands plain
// strings and numbers to the conversion service.
type Prompt struct {
	service ports.ConversionService
	in      *bufio.Reader
	out     io.Writer
	log     *logger.Logger

	// readSecret reads the API key; it hides typing when stdin is a terminal.
	readSecret func() (string, error)
}

func NewPrompt(svc ports.ConversionService, in io.Reader, out io.Writer, log *logger.Logger) *Prompt {
	p := &Prompt{
		service: svc,
		in:      bufio.NewReader(in),
		out:     out,
		log:     log,
	}
	p.readSecret = p.readLine
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		p.readSecret = func() (string, error) {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(p.out)
			return string(b), err
		}
	}
	return p
}

// AskAPIKey prompts until a non-empty key is entered or ctx is done.
func (p *Prompt) AskAPIKey(ctx context.Context) (string, error) {
	for {
		fmt.Fprintln(p.out, "Enter your API key:")
		key, err := p.await(ctx, p.readSecret)
		if err != nil {
			return "", err
		}
		if key = strings.TrimSpace(key); key != "" {
			return key, nil
		}
		warningColor.Fprintln(p.out, "The API key cannot be empty.")
	}
}

// Run shows the menu until the user picks 0, input ends, or ctx is done.
// A done context is reported as ctx.Err().
func (p *Prompt) Run(ctx context.Context) error {
	titleColor.Fprintln(p.out, "\nHello, this is a currency conversion CLI program!")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintln(p.out, menu)
		choice, err := p.nextLine(ctx)
		if err != nil {
			return endOfInput(err)
		}

		switch choice {
		case "1":
			if err := p.exchange(ctx); err != nil {
				return endOfInput(err)
			}
		case "2":
			p.listRates(ctx)
		case "3":
			key, err := p.AskAPIKey(ctx)
			if err != nil {
				return endOfInput(err)
			}
			p.service.SetCredential(key)
			resultColor.Fprintln(p.out, "API key updated.")
		case "0":
			fmt.Fprintln(p.out, "Bye!")
			return nil
		default:
			warningColor.Fprintln(p.out, "There is no such option. Choose from the provided options.")
		}
	}
}

func (p *Prompt) exchange(ctx context.Context) error {
	fmt.Fprintln(p.out, "\nYou can put currencies in their international codes, like \"USD\" or just \"usd\" or even \"UsD\".")
	fmt.Fprintln(p.out, "Put the source currency, the one you are converting from:")
	source, err := p.nextLine(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(p.out, "Put the target currency, the one you are converting to:")
	target, err := p.nextLine(ctx)
	if err != nil {
		return err
	}

	var amount float32
	for {
		fmt.Fprintln(p.out, "Put an amount of the source currency:")
		raw, err := p.nextLine(ctx)
		if err != nil {
			return err
		}
		parsed, err := strconv.ParseFloat(raw, 32)
		if err == nil {
			amount = float32(parsed)
			break
		}
		warningColor.Fprintln(p.out, "Not a number.")
	}

	conversion, err := p.service.Convert(ctx, source, target, amount)
	if err != nil {
		p.log.Debug("Conversion failed", "error", err)
		warningColor.Fprintln(p.out, service.FailureMessage(err))
		return nil
	}
	resultColor.Fprintf(p.out, "\nResult:\n%s\n", service.FormatConversion(conversion))
	return nil
}

func (p *Prompt) listRates(ctx context.Context) {
	listing, err := p.service.ListRates(ctx)
	if err != nil {
		p.log.Debug("Listing failed", "error", err)
		warningColor.Fprintln(p.out, service.FailureMessage(err))
		return
	}

	titleColor.Fprintf(p.out, "\nRates to %s, last updated %s:\n", listing.Base, utils.FormatTimestamp(listing.LastUpdated))
	for _, e := range listing.Rates {
		fmt.Fprintf(p.out, "%s: %s\n", e.Currency, utils.FormatAmount(e.Rate))
	}
}

func (p *Prompt) nextLine(ctx context.Context) (string, error) {
	return p.await(ctx, p.readLine)
}

type readResult struct {
	line string
	err  error
}

// await runs a blocking read in its own goroutine so a done ctx ends the wait.
// An abandoned read is left behind; the prompt is not used after that.
func (p *Prompt) await(ctx context.Context, read func() (string, error)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	done := make(chan readResult, 1)
	go func() {
		line, err := read()
		done <- readResult{line: line, err: err}
	}()

	select {
	case res := <-done:
		return res.line, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// readLine returns the next trimmed line. A final line without a newline is
// still returned; io.EOF is reported only when nothing was read.
func (p *Prompt) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
