package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go-safeher/chat"
	"go-safeher/types"
)

const replHelp = `Commands:
  /mode emergency|advice   switch mode
  /location <lat>,<lon>    set your location
  /quit                    leave`

// runREPL reads one utterance per line until EOF, /quit or ctx is done.
func runREPL(ctx context.Context, conv *chat.Conversation, in io.Reader, out io.Writer) error {
	for _, m := range conv.History() {
		printMessage(out, m)
	}
	fmt.Fprintln(out, replHelp)

	scanner := bufio.NewScanner(in)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprintf(out, "[%s] > ", conv.Mode())
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			fmt.Fprintln(out, "Stay safe. Goodbye.")
			return nil
		case line == "/help":
			fmt.Fprintln(out, replHelp)
		case strings.HasPrefix(line, "/mode"):
			mode, err := types.ParseMode(strings.TrimSpace(strings.TrimPrefix(line, "/mode")))
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			printMessage(out, conv.SwitchMode(mode))
		case strings.HasPrefix(line, "/location"):
			coord, err := parseCoordinate(strings.TrimSpace(strings.TrimPrefix(line, "/location")))
			if err == nil {
				err = conv.SetOrigin(coord)
			}
			if err != nil {
				fmt.Fprintln(out, "location not set:", err)
				continue
			}
			fmt.Fprintf(out, "📍 Location set to %s\n", coord)
		default:
			replies, err := conv.Handle(ctx, line)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				fmt.Fprintln(out, "error:", err)
				continue
			}
			for _, m := range replies {
				printMessage(out, m)
			}
		}
	}
}

func printMessage(out io.Writer, m types.Message) {
	fmt.Fprintf(out, "%s\n\n", m.Text)
}

func parseCoordinate(s string) (types.Coordinate, error) {
	lat, lon, ok := strings.Cut(s, ",")
	if !ok {
		return types.Coordinate{}, fmt.Errorf("expected <lat>,<lon>, got %q", s)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return types.Coordinate{}, fmt.Errorf("invalid latitude: %w", err)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return types.Coordinate{}, fmt.Errorf("invalid longitude: %w", err)
	}
	return types.Coordinate{Lat: la, Lon: lo}, nil
}
