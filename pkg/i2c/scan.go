// Package i2c probes the I2C control bus for the MCP23017 GPIO expander.
// It drives the i2cdetect utility, parses its fixed-width address grid,
// and matches responding addresses against the expander's candidate
// range. Absence of a match is a legitimate outcome (the appliance may be
// built without the buttons/LEDs board), never an error.
package i2c

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/quadify/quadify-setup/pkg/sysops"
)

// DefaultBus is the Raspberry Pi's user-facing I2C bus.
const DefaultBus = 1

// DefaultCandidates are the addresses an MCP23017 can be strapped to
// (0x20 through 0x27, set by its three address pins).
var DefaultCandidates = []string{"20", "21", "22", "23", "24", "25", "26", "27"}

var addrToken = regexp.MustCompile(`^[0-9a-f]{2}$`)

// ParseAddresses extracts every responding address from an i2cdetect
// grid. Row headers ("20:") and placeholders ("--", "UU") are ignored.
func ParseAddresses(grid string) []string {
	var addrs []string
	for _, line := range splitGridRows(grid) {
		for _, tok := range line {
			if addrToken.MatchString(tok) {
				addrs = append(addrs, tok)
			}
		}
	}
	return addrs
}

// FindExpander returns the first responding address present in
// candidates, as a "0x"-prefixed hex literal. The second return is false
// when no candidate responds.
func FindExpander(grid string, candidates []string) (string, bool) {
	responding := ParseAddresses(grid)
	for _, addr := range responding {
		for _, c := range candidates {
			if addr == c {
				return "0x" + addr, true
			}
		}
	}
	return "", false
}

// splitGridRows returns the data tokens of each grid row, dropping the
// header row and each row's leading offset column.
func splitGridRows(grid string) [][]string {
	var rows [][]string
	for _, line := range regexp.MustCompile(`\r?\n`).Split(grid, -1) {
		fields := regexp.MustCompile(`\s+`).Split(line, -1)
		var row []string
		seenOffset := false
		for _, f := range fields {
			if f == "" {
				continue
			}
			if !seenOffset {
				// Rows start with an offset column like "20:"; the
				// header row has no such column and is skipped whole.
				if len(f) > 1 && f[len(f)-1] == ':' {
					seenOffset = true
				}
				continue
			}
			row = append(row, f)
		}
		if seenOffset {
			rows = append(rows, row)
		}
	}
	return rows
}

// Scanner invokes i2cdetect against one bus.
type Scanner struct {
	runner *sysops.Runner

	// Bus is the bus number passed to i2cdetect.
	Bus int
}

// NewScanner creates a scanner for the given bus.
func NewScanner(r *sysops.Runner, bus int) *Scanner {
	return &Scanner{runner: r, Bus: bus}
}

// Detect runs the bus scan and extracts the expander address. The raw
// grid is mirrored to mirror (the operator watches the scan in real
// time) as well as the transcript. A failed i2cdetect invocation is an
// error; a clean scan with no expander is ("", false, nil).
func (s *Scanner) Detect(ctx context.Context, mirror io.Writer) (string, bool, error) {
	grid, err := s.runner.Capture(ctx, mirror, "i2cdetect", "-y", strconv.Itoa(s.Bus))
	if err != nil {
		return "", false, fmt.Errorf("i2cdetect on bus %d failed: %w", s.Bus, err)
	}
	addr, found := FindExpander(grid, DefaultCandidates)
	return addr, found, nil
}
