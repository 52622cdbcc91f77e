package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nopper/wikibench/mention"
)

const (
	documentsDir   = "documents"
	annotationsDir = "annotations"
	tsvFields      = 7
)

func documentPath(dir string, id int) string {
	return filepath.Join(dir, documentsDir, fmt.Sprintf("%07d.txt", id))
}

func annotationPath(dir string, id int) string {
	return filepath.Join(dir, annotationsDir, fmt.Sprintf("%07d.tsv", id))
}

// LoadTSV loads a dataset directory. The dataset is named after the
// directory and instances are ordered by file name.
func LoadTSV(dir string) (*mention.Dataset, error) {
	ids, err := listIDs(filepath.Join(dir, documentsDir), ".txt")
	if err != nil {
		return nil, err
	}

	instances := make([]*mention.Instance, 0, len(ids))
	for _, id := range ids {
		text, err := os.ReadFile(documentPath(dir, id))
		if err != nil {
			return nil, fmt.Errorf("reading document: %w", err)
		}

		mentions, err := readMentions(annotationPath(dir, id))
		if err != nil {
			return nil, err
		}

		instances = append(instances, &mention.Instance{ID: id, Text: string(text), Mentions: mentions})
	}

	return &mention.Dataset{Name: filepath.Base(filepath.Clean(dir)), Instances: instances}, nil
}

// SaveTSV writes every instance text and its mentions under dir.
func SaveTSV(ds *mention.Dataset, dir string) error {
	if err := os.MkdirAll(filepath.Join(dir, documentsDir), 0o755); err != nil {
		return fmt.Errorf("creating documents dir: %w", err)
	}

	for _, in := range ds.Instances {
		if err := os.WriteFile(documentPath(dir, in.ID), []byte(in.Text), 0o644); err != nil {
			return fmt.Errorf("writing document %d: %w", in.ID, err)
		}
		if err := SaveMentions(dir, in.ID, in.Mentions); err != nil {
			return err
		}
	}
	return nil
}

// HasResults reports whether dir holds an annotations directory.
func HasResults(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, annotationsDir))
	return err == nil && info.IsDir()
}

// LoadResults loads annotator output: the annotation files of dir, without
// document text. A directory without annotations yields no instances.
func LoadResults(dir string) ([]*mention.Instance, error) {
	ids, err := listIDs(filepath.Join(dir, annotationsDir), ".tsv")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	instances := make([]*mention.Instance, 0, len(ids))
	for _, id := range ids {
		mentions, err := readMentions(annotationPath(dir, id))
		if err != nil {
			return nil, err
		}
		instances = append(instances, &mention.Instance{ID: id, Mentions: mentions})
	}
	return instances, nil
}

// HasBeenProcessed reports whether annotations for instance id exist in dir.
func HasBeenProcessed(dir string, id int) bool {
	_, err := os.Stat(annotationPath(dir, id))
	return err == nil
}

// SaveMentions writes the annotation file of instance id, replacing any
// previous one.
func SaveMentions(dir string, id int, mentions []*mention.Mention) error {
	if err := os.MkdirAll(filepath.Join(dir, annotationsDir), 0o755); err != nil {
		return fmt.Errorf("creating annotations dir: %w", err)
	}

	f, err := os.Create(annotationPath(dir, id))
	if err != nil {
		return fmt.Errorf("creating annotation file: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := WriteMentions(w, mentions); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing annotation file: %w", err)
	}
	return f.Close()
}

var fieldCleaner = strings.NewReplacer("\n", "", "\r", "", "\t", "")

// WriteMentions writes one TSV line per mention:
// start, end, entity id, title, spot, confidence, coherence.
func WriteMentions(w io.Writer, mentions []*mention.Mention) error {
	for _, m := range mentions {
		_, err := fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%s\t%.3f\t%.3f\n",
			m.Start, m.End, m.EntityID,
			fieldCleaner.Replace(m.Title), fieldCleaner.Replace(m.Spot),
			m.Confidence, m.Coherence)
		if err != nil {
			return fmt.Errorf("writing mention: %w", err)
		}
	}
	return nil
}

// ReadMentions parses TSV lines written by WriteMentions. Blank lines are
// skipped.
func ReadMentions(r io.Reader) ([]*mention.Mention, error) {
	var mentions []*mention.Mention
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		m, err := parseMention(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		mentions = append(mentions, m)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan annotations: %w", err)
	}
	return mentions, nil
}

func parseMention(line string) (*mention.Mention, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != tsvFields {
		return nil, fmt.Errorf("%w: %d fields, want %d", ErrMalformed, len(fields), tsvFields)
	}

	var ints [3]int
	for i := range ints {
		v, err := strconv.Atoi(strings.TrimSpace(fields[i]))
		if err != nil {
			return nil, fmt.Errorf("%w: field %d: %v", ErrMalformed, i+1, err)
		}
		ints[i] = v
	}

	var scores [2]float64
	for i := range scores {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[5+i]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: field %d: %v", ErrMalformed, 6+i, err)
		}
		scores[i] = v
	}

	m := mention.New(fields[4], ints[0], ints[1], fields[3], ints[2])
	m.Confidence, m.Coherence = scores[0], scores[1]
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return m, nil
}

func readMentions(path string) ([]*mention.Mention, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening annotations: %w", err)
	}
	defer f.Close()

	mentions, err := ReadMentions(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return mentions, nil
}

// listIDs returns the numeric ids of the files in dir with extension ext,
// in directory order (sorted by name).
func listIDs(dir, ext string) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var ids []int
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ext {
			continue
		}

		id, err := strconv.Atoi(strings.TrimSuffix(entry.Name(), ext))
		if err != nil {
			return nil, fmt.Errorf("%w: file name %s", ErrMalformed, entry.Name())
		}
		ids = append(ids, id)
	}
	return ids, nil
}
