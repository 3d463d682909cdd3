package cnf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseGCNFFile reads a group-CNF file (optionally gzip-compressed),
// matching spec §6.1: each clause is prefixed with "{g}" giving its group
// id, 0 meaning hard. N == NGROUPS from the header.
func ParseGCNFFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cnf: opening %s", path)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "cnf: %s is not valid gzip", path)
		}
		defer gz.Close()
		r = gz
	}
	return ParseGCNF(r)
}

// ParseGCNF parses the group-CNF format from r.
func ParseGCNF(r io.Reader) (*Model, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	m := &Model{Groups: map[int][]int{}}
	headerSeen := false

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		switch line[0] {
		case 'c':
			continue
		case 'p':
			fields := strings.Fields(line)
			if len(fields) != 5 || fields[1] != "gcnf" {
				return nil, errors.Errorf("cnf: malformed gcnf header %q", line)
			}
			nvars, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, errors.Wrapf(err, "cnf: malformed header %q", line)
			}
			nclauses, err := strconv.Atoi(fields[3])
			if err != nil {
				return nil, errors.Wrapf(err, "cnf: malformed header %q", line)
			}
			ngroups, err := strconv.Atoi(fields[4])
			if err != nil {
				return nil, errors.Wrapf(err, "cnf: malformed header %q", line)
			}
			m.NVars, m.NClauses, m.N = nvars, nclauses, ngroups
			headerSeen = true
			continue
		}
		if !headerSeen {
			return nil, errors.New("cnf: clause encountered before 'p gcnf' header")
		}
		group, clause, err := parseGroupClauseLine(line)
		if err != nil {
			return nil, err
		}
		m.Clauses = append(m.Clauses, clause)
		m.Groups[group] = append(m.Groups[group], len(m.Clauses)-1)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "cnf: reading input")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// WriteGCNF serializes hard (group 0) and the named soft groups to w in
// group-CNF form, renumbering the written groups 1..len(groups) in the
// order given so a caller reading back a "v ..." line of retained group
// indices can map them straight back to ids via that same order.
func WriteGCNF(w io.Writer, m *Model, ids []int) error {
	clauseCount := len(m.GroupClauses(0))
	for _, id := range ids {
		clauseCount += len(m.GroupClauses(id))
	}
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "p gcnf %d %d %d\n", m.NVars, clauseCount, len(ids)); err != nil {
		return errors.Wrap(err, "cnf: writing gcnf header")
	}
	for _, c := range m.GroupClauses(0) {
		if err := writeGroupClause(bw, 0, c); err != nil {
			return err
		}
	}
	for i, id := range ids {
		for _, c := range m.GroupClauses(id) {
			if err := writeGroupClause(bw, i+1, c); err != nil {
				return err
			}
		}
	}
	return errors.Wrap(bw.Flush(), "cnf: flushing gcnf output")
}

func writeGroupClause(w *bufio.Writer, group int, c Clause) error {
	if _, err := fmt.Fprintf(w, "{%d}", group); err != nil {
		return err
	}
	for _, l := range c {
		if _, err := fmt.Fprintf(w, " %d", l); err != nil {
			return err
		}
	}
	_, err := w.WriteString(" 0\n")
	return err
}

func parseGroupClauseLine(line string) (int, Clause, error) {
	open := strings.IndexByte(line, '{')
	close := strings.IndexByte(line, '}')
	if open != 0 || close < 0 {
		return 0, nil, errors.Errorf("cnf: clause %q missing leading {group}", line)
	}
	group, err := strconv.Atoi(line[open+1 : close])
	if err != nil {
		return 0, nil, errors.Wrapf(err, "cnf: malformed group tag in %q", line)
	}
	clause, err := parseClauseLine(strings.TrimSpace(line[close+1:]))
	if err != nil {
		return 0, nil, err
	}
	return group, clause, nil
}
