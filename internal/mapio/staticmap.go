// Package mapio parses the static map text format. It is a thin external
// collaborator: no planning logic lives here, only the textual grid/agent
// format the CBS core consumes as a *core.GridMap plus start/goal vertex
// slices.
package mapio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/elektrokombinacija/mapf-cbs/internal/core"
)

// Instance is a parsed static-map file: a grid plus one (start, goal) pair
// per agent, in file order.
type Instance struct {
	Grid   *core.GridMap
	Starts []core.Vertex
	Goals  []core.Vertex
}

// ParseStaticMap reads the format:
//
//	<rows> <cols>
//	<rows lines of "cols" whitespace-separated cells, '@' obstacle, '.' free>
//	<num_agents>
//	<num_agents lines of "sx sy gx gy">
func ParseStaticMap(r io.Reader) (*Instance, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	line, err := nextLine(scanner)
	if err != nil {
		return nil, err
	}
	var rows, cols int
	if _, err := fmt.Sscanf(line, "%d %d", &rows, &cols); err != nil {
		return nil, fmt.Errorf("mapio: bad header %q: %w", line, err)
	}

	// Obstacle[x][y]: row r of the file fixes x = r, and the cells on that
	// row fix y across [0, cols). This matches the original's
	// map[x][y]/w=len(map)/h=len(map[0]) convention, so rows become the X
	// extent and columns the Y extent.
	obstacle := make([][]bool, rows)
	for x := range obstacle {
		obstacle[x] = make([]bool, cols)
	}
	for x := 0; x < rows; x++ {
		row, err := nextLine(scanner)
		if err != nil {
			return nil, fmt.Errorf("mapio: reading row %d: %w", x, err)
		}
		cells := strings.Fields(row)
		if len(cells) != cols {
			return nil, fmt.Errorf("mapio: row %d has %d cells, want %d", x, len(cells), cols)
		}
		for y, cell := range cells {
			obstacle[x][y] = cell == "@"
		}
	}
	grid := core.NewGridMap(obstacle)

	line, err = nextLine(scanner)
	if err != nil {
		return nil, fmt.Errorf("mapio: reading agent count: %w", err)
	}
	numAgents, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return nil, fmt.Errorf("mapio: bad agent count %q: %w", line, err)
	}

	inst := &Instance{
		Grid:   grid,
		Starts: make([]core.Vertex, numAgents),
		Goals:  make([]core.Vertex, numAgents),
	}
	for i := 0; i < numAgents; i++ {
		line, err = nextLine(scanner)
		if err != nil {
			return nil, fmt.Errorf("mapio: reading agent %d: %w", i, err)
		}
		var sx, sy, gx, gy int
		if _, err := fmt.Sscanf(line, "%d %d %d %d", &sx, &sy, &gx, &gy); err != nil {
			return nil, fmt.Errorf("mapio: bad agent line %q: %w", line, err)
		}
		start, goal := core.Vertex{X: sx, Y: sy}, core.Vertex{X: gx, Y: gy}
		if !grid.IsFree(start) || !grid.IsFree(goal) {
			return nil, fmt.Errorf("%w: agent %d", core.ErrInvalidEndpoint, i)
		}
		inst.Starts[i] = start
		inst.Goals[i] = goal
	}

	return inst, scanner.Err()
}

// nextLine returns the next non-blank line, skipping whitespace-only lines.
func nextLine(scanner *bufio.Scanner) (string, error) {
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		return line, nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.ErrUnexpectedEOF
}
