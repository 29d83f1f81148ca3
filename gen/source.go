package gen

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// sumPrefix starts the line of a generated file carrying its checksum.
const sumPrefix = "// hbs:sum "

// readAll reads r through a read-ahead buffer.
func readAll(r io.Reader) ([]byte, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	return io.ReadAll(ra)
}

func readFile(name string) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readAll(f)
}

// Sum returns the checksum of everything the generated file depends on: the
// manifest settings and the source of each template. Template sources are
// read if not already loaded.
func (m *Manifest) Sum() (string, error) {
	if err := m.load(); err != nil {
		return "", err
	}

	h := xxh3.New()

	field := func(s string) {
		_, _ = h.WriteString(strconv.Itoa(len(s)))
		_, _ = h.WriteString(":")
		_, _ = h.WriteString(s)
	}

	field(m.Package)
	field(m.RuntimeImport())
	field(m.Fields)
	field(strconv.FormatBool(m.FixImports))

	for _, t := range m.Templates {
		field(t.Name)
		field(t.Type)
		field(t.Method)
		field(t.Receiver)
		field(strconv.FormatBool(t.Pointer))
		field(t.Sink)
		field(strings.Join(t.Imports, ","))
		field(t.Source)
	}

	return formatSum(h.Sum64()), nil
}

func formatSum(sum uint64) string {
	s := strconv.FormatUint(sum, 16)

	return strings.Repeat("0", 16-len(s)) + s
}

// Current reports whether the file at name was generated with checksum sum.
// A missing file is not current.
func Current(name, sum string) (bool, error) {
	f, err := os.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, err
	}
	defer f.Close()

	// The checksum is part of the header preceding the package clause.
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()

		if got, ok := strings.CutPrefix(line, sumPrefix); ok {
			return strings.TrimSpace(got) == sum, nil
		}

		if strings.HasPrefix(line, "package ") {
			break
		}
	}

	return false, sc.Err()
}

// ReadSource returns the contents of the file name, or of standard input if
// name is "-".
func ReadSource(name string) (string, error) {
	var (
		data []byte
		err  error
	)

	if name == "-" {
		data, err = readAll(os.Stdin)
	} else {
		data, err = readFile(name)
	}

	if err != nil {
		return "", ErrTemplate.Wrap(err).With(slog.String("source", name))
	}

	return string(data), nil
}
