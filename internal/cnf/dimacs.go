package cnf

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseDimacsFile reads a DIMACS CNF file (optionally gzip-compressed,
// detected by a .gz suffix), matching spec §6.1: each clause becomes its
// own soft group, so N == NCLAUSES.
func ParseDimacsFile(path string) (*Model, error) {
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
	return ParseDimacs(r)
}

// ParseDimacs parses the DIMACS CNF format from r. Lines beginning with
// 'c' are comments; the 'p cnf NVARS NCLAUSES' header must precede every
// clause line; each clause line is whitespace-separated literals
// terminated by a trailing 0.
func ParseDimacs(r io.Reader) (*Model, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	m := &Model{Groups: map[int][]int{}}
	headerSeen := false
	group := 0

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
			if len(fields) != 4 || fields[1] != "cnf" {
				return nil, errors.Errorf("cnf: malformed header %q", line)
			}
			nvars, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, errors.Wrapf(err, "cnf: malformed header %q", line)
			}
			nclauses, err := strconv.Atoi(fields[3])
			if err != nil {
				return nil, errors.Wrapf(err, "cnf: malformed header %q", line)
			}
			m.NVars, m.NClauses = nvars, nclauses
			headerSeen = true
			continue
		}
		if !headerSeen {
			return nil, errors.New("cnf: clause encountered before 'p cnf' header")
		}
		clause, err := parseClauseLine(line)
		if err != nil {
			return nil, err
		}
		group++
		m.Clauses = append(m.Clauses, clause)
		m.Groups[group] = append(m.Groups[group], len(m.Clauses)-1)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "cnf: reading input")
	}
	m.N = group
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func parseClauseLine(line string) (Clause, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[len(fields)-1] != "0" {
		return nil, errors.Errorf("cnf: clause %q missing terminating 0", line)
	}
	fields = fields[:len(fields)-1]
	clause := make(Clause, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, errors.Wrapf(err, "cnf: malformed literal %q", f)
		}
		if v == 0 {
			return nil, errors.Errorf("cnf: unexpected literal 0 in clause %q", line)
		}
		clause = append(clause, Lit(v))
	}
	return clause, nil
}
