// Copyright 2014 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/cayleygraph/quad/nquads"
	"github.com/peterh/liner"

	"github.com/cayleygraph/lpgrdf"
	"github.com/cayleygraph/lpgrdf/clog"
	"github.com/cayleygraph/lpgrdf/graph"
	"github.com/cayleygraph/lpgrdf/graph/lpg"
	"github.com/cayleygraph/lpgrdf/schema"
)

const (
	ps1 = "lpgrdf> "

	history = ".lpgrdf_history"
)

// errExit is returned by Exec for the exit command.
var errExit = errors.New("exit")

const help = `Help
	label <Label> [depth]        // nodes with a label
	type <Type>                  // relationships of a type
	linked <node> [type] [dir]   // nodes one hop away; dir is out, in or both
	node <node>                  // a node by ID or URI
	triples <uri>                // stored triples about a resource
	stats                        // content of the database
	:a <triple>                  // import a triple
	:h <triple>                  // add a subclass or subproperty statement
	:schema [name]               // schema used by :a
	:inferred [t|f]              // follow the class hierarchy in queries
	:debug [t|f]
	help                         // this help
	exit                         // exit
`

// Session executes REPL commands against an engine.
type Session struct {
	e        *lpgrdf.Engine
	w        io.Writer
	schema   schema.ID
	inferred bool
	// Limit caps the number of results printed.
	Limit int
}

// NewSession creates a session writing results to w.
func NewSession(e *lpgrdf.Engine, w io.Writer) *Session {
	return &Session{e: e, w: w, inferred: true, Limit: 100}
}

func parseBool(s string) (bool, error) {
	switch s {
	case "t":
		return true, nil
	case "f":
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("cannot parse %q as a valid boolean - acceptable values: 't'|'true' or 'f'|'false'", s)
	}
	return v, nil
}

func formatNode(n lpg.Node) string {
	var sb strings.Builder
	sb.WriteString("(")
	sb.WriteString(n.ID.String())
	for _, l := range n.Labels {
		sb.WriteString(":")
		sb.WriteString(l)
	}
	if len(n.Properties) != 0 {
		sb.WriteString(" {")
		for i, k := range n.Properties.Keys() {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s: %q", k, n.Properties[k].String())
		}
		sb.WriteString("}")
	}
	sb.WriteString(")")
	return sb.String()
}

func formatRel(r lpg.Relationship) string {
	return fmt.Sprintf("(%v)-[%v:%s]->(%v)", r.Start, r.ID, r.Type, r.End)
}

// node finds a node by ID, then by URI.
func (s *Session) node(arg string) (lpg.Node, error) {
	if id, err := strconv.ParseUint(arg, 10, 64); err == nil {
		return s.e.NodeByID(lpg.NodeID(id))
	}
	if n, ok := s.e.NodeByURI(arg); ok {
		return n, nil
	}
	return lpg.Node{}, fmt.Errorf("%w: %q", lpg.ErrNodeNotFound, arg)
}

func (s *Session) printResults(lines []string, start time.Time) {
	n := len(lines)
	if s.Limit > 0 && len(lines) > s.Limit {
		lines = lines[:s.Limit]
	}
	for _, l := range lines {
		fmt.Fprintln(s.w, l)
	}
	results := "Result"
	if n != 1 {
		results += "s"
	}
	fmt.Fprintf(s.w, "-----------\n%d %s\nElapsed time: %g ms\n\n", n, results,
		float64(time.Since(start).Nanoseconds())/1e6)
}

func (s *Session) triple(args string) (graph.Triple, error) {
	q, err := nquads.Parse(strings.TrimSpace(args))
	if err != nil {
		return graph.Triple{}, fmt.Errorf("not a valid triple: %w", err)
	}
	return graph.FromQuad(s.e.Refs(), q)
}

// Exec runs one line of input.
func (s *Session) Exec(ctx context.Context, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line = strings.TrimSpace(line)
	if len(line) == 0 || line[0] == '#' {
		return nil
	}
	start := time.Now()
	cmd, args := splitLine(line)
	fields := strings.Fields(args)
	switch cmd {
	case ":debug":
		debug, err := parseBool(strings.TrimSpace(args))
		if err != nil {
			return err
		}
		if debug {
			clog.SetV(2)
		} else {
			clog.SetV(0)
		}
		fmt.Fprintf(s.w, "Debug set to %t\n", debug)

	case ":inferred":
		if len(fields) != 0 {
			v, err := parseBool(fields[0])
			if err != nil {
				return err
			}
			s.inferred = v
		}
		fmt.Fprintf(s.w, "Inference set to %t\n", s.inferred)

	case ":schema":
		if len(fields) != 0 {
			id, ok := s.e.Schemas().SchemaByName(fields[0])
			if !ok {
				return fmt.Errorf("%w: %q", schema.ErrUnknownSchema, fields[0])
			}
			s.schema = id
		}
		if s.schema == 0 {
			fmt.Fprintln(s.w, "No schema")
			return nil
		}
		sch, err := s.e.Schemas().Schema(s.schema)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.w, "Schema %s <%s>, %d mappings\n", sch.Name, sch.Namespace, sch.Mappings)

	case ":a":
		t, err := s.triple(args)
		if err != nil {
			return err
		}
		st, err := s.e.Ingest([]graph.Triple{t}, s.schema)
		if err != nil {
			return err
		}
		if st.Duplicates != 0 {
			fmt.Fprintln(s.w, "Duplicate triple")
		} else {
			fmt.Fprintf(s.w, "Added %d nodes, %d relationships\n", st.Nodes, st.Relationships)
		}

	case ":h":
		t, err := s.triple(args)
		if err != nil {
			return err
		}
		n, err := s.e.IngestHierarchy([]graph.Triple{t})
		if err != nil {
			return err
		}
		fmt.Fprintf(s.w, "Added %d hierarchy edges\n", n)

	case "label":
		if len(fields) == 0 {
			return errors.New("usage: label <Label> [depth]")
		}
		var (
			nodes []lpg.Node
			err   error
		)
		if len(fields) > 1 {
			depth, perr := strconv.Atoi(fields[1])
			if perr != nil {
				return fmt.Errorf("invalid depth %q", fields[1])
			}
			nodes, err = s.e.NodesWithLabelDepth(fields[0], depth)
		} else {
			nodes, err = s.e.NodesWithLabel(fields[0], s.inferred)
		}
		if err != nil {
			return err
		}
		lines := make([]string, 0, len(nodes))
		for _, n := range nodes {
			lines = append(lines, formatNode(n))
		}
		s.printResults(lines, start)

	case "type":
		if len(fields) == 0 {
			return errors.New("usage: type <Type>")
		}
		rels, err := s.e.RelationshipsOfType(fields[0], s.inferred)
		if err != nil {
			return err
		}
		lines := make([]string, 0, len(rels))
		for _, r := range rels {
			lines = append(lines, formatRel(r))
		}
		s.printResults(lines, start)

	case "linked":
		if len(fields) == 0 {
			return errors.New("usage: linked <node> [type] [dir]")
		}
		n, err := s.node(fields[0])
		if err != nil {
			return err
		}
		var typ, dir string
		if len(fields) > 1 && fields[1] != "*" {
			typ = fields[1]
		}
		if len(fields) > 2 {
			dir = fields[2]
		}
		d, err := lpg.ParseDirection(dir)
		if err != nil {
			return err
		}
		nodes, err := s.e.LinkedNodes(n.ID, typ, d, s.inferred)
		if err != nil {
			return err
		}
		lines := make([]string, 0, len(nodes))
		for _, n := range nodes {
			lines = append(lines, formatNode(n))
		}
		s.printResults(lines, start)

	case "node":
		if len(fields) == 0 {
			return errors.New("usage: node <id|uri>")
		}
		n, err := s.node(fields[0])
		if err != nil {
			return err
		}
		s.printResults([]string{formatNode(n)}, start)

	case "triples":
		if len(fields) == 0 {
			return errors.New("usage: triples <uri>")
		}
		var lines []string
		for _, t := range s.e.TriplesBySubject(fields[0]) {
			q, err := graph.ToQuad(s.e.Refs(), t)
			if err != nil {
				return err
			}
			lines = append(lines, strings.TrimSpace(q.NQuad()))
		}
		s.printResults(lines, start)

	case "stats":
		st := s.e.Stats()
		fmt.Fprintf(s.w, "%d triples, %d resources, %d nodes, %d relationships, %d subclass and %d subproperty edges\n",
			st.Triples, st.Resources, st.Nodes, st.Relationships, st.SubClassEdges, st.SubPropertyEdges)

	case "help":
		fmt.Fprint(s.w, help)

	case "exit":
		return errExit

	default:
		return fmt.Errorf("unknown command: %q", cmd)
	}
	return nil
}

// Repl reads commands from the terminal until EOF or exit.
func Repl(ctx context.Context, e *lpgrdf.Engine, timeout time.Duration) error {
	ses := NewSession(e, os.Stdout)

	term, err := terminal(history)
	if os.IsNotExist(err) {
		fmt.Printf("creating new history file: %q\n", history)
	}
	defer persist(term, history)

	newCtx := func() (context.Context, func()) { return ctx, func() {} }
	if timeout > 0 {
		newCtx = func() (context.Context, func()) { return context.WithTimeout(ctx, timeout) }
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line, err := term.Prompt(ps1)
		if err != nil {
			if err == io.EOF {
				fmt.Println()
				return nil
			}
			return err
		}

		term.AppendHistory(line)

		nctx, cancel := newCtx()
		err = ses.Exec(nctx, line)
		cancel()
		if err == errExit {
			return nil
		} else if err != nil {
			fmt.Println("Error: ", err)
		}
	}
}

// Splits a line into a command and its arguments
// e.g. ":a b c d ." will be split into ":a" and " b c d ."
func splitLine(line string) (string, string) {
	var command, arguments string

	line = strings.TrimSpace(line)

	// An empty line/a line consisting of whitespace contains neither command nor arguments
	if len(line) > 0 {
		command = strings.Fields(line)[0]

		// A line containing only a command has no arguments
		if len(line) > len(command) {
			arguments = line[len(command):]
		}
	}

	return command, arguments
}

func terminal(path string) (*liner.State, error) {
	term := liner.NewLiner()

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, os.Kill)
		<-c

		err := persist(term, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to properly clean up terminal: %v\n", err)
			os.Exit(1)
		}

		os.Exit(0)
	}()

	f, err := os.Open(path)
	if err != nil {
		return term, err
	}
	defer f.Close()
	_, err = term.ReadHistory(f)
	return term, err
}

func persist(term *liner.State, path string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0666)
	if err != nil {
		return fmt.Errorf("could not open %q to append history: %v", path, err)
	}
	defer f.Close()
	_, err = term.WriteHistory(f)
	if err != nil {
		return fmt.Errorf("could not write history to %q: %v", path, err)
	}
	return term.Close()
}
