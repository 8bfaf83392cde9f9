package garmentag

import (
	"context"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// recordingOracle remembers how many images it was shown.
type recordingOracle struct {
	fakeOracle
	seen int
}

func (r *recordingOracle) Open(ctx context.Context) (Detector, error) {
	r.seen++
	return r.fakeOracle.Open(ctx)
}

func TestProcessDirectory_SkipsReservedNames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeJPEG(t, dir, "a.jpg")
	writeJPEG(t, dir, "a_U.jpg")
	writeJPEG(t, dir, "a_binary_mask.jpg")

	oracle := &recordingOracle{fakeOracle: fakeOracle{set: poseWith(1, 5, 0.9)}}
	cfg := &Config{Oracle: oracle}

	sum, err := cfg.ProcessDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Attempted)
	assert.Equal(t, 1, sum.Succeeded)
	assert.Empty(t, sum.Failures)
	assert.Equal(t, 1, oracle.seen)
	assert.Equal(t, []string{"a_L.jpg", "a_U.jpg", "a_binary_mask.jpg"}, dirNames(t, dir))
}

func TestProcessDirectory_FailureDoesNotStopBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeJPEG(t, dir, "b.jpg")
	writeJPEG(t, dir, "c.jpg")
	writeJPEG(t, dir, "d.jpg")
	// b_U.jpg is both reserved (never a candidate) and the target of b.jpg.
	writeFile(t, dir, "b_U.jpg", []byte("occupied"))

	cfg := &Config{Oracle: upperOracle()}
	sum, err := cfg.ProcessDirectory(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Attempted)
	assert.Equal(t, 2, sum.Succeeded)
	require.Len(t, sum.Failures, 1)
	assert.Equal(t, filepath.Join(dir, "b.jpg"), sum.Failures[0].Path)
	assert.ErrorIs(t, sum.Failures[0].Err, ErrTargetExists)

	assert.Equal(t, []string{"b.jpg", "b_U.jpg", "c_U.jpg", "d_U.jpg"}, dirNames(t, dir))
}

func TestProcessDirectory_PermissionDeniedContinues(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeJPEG(t, dir, "a.jpg")
	writeJPEG(t, dir, "b.jpg")
	readOnlyDir(t, dir)

	oracle := &recordingOracle{fakeOracle: fakeOracle{set: poseWith(1, 5, 0.9)}}
	cfg := &Config{Oracle: oracle}

	sum, err := cfg.ProcessDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Attempted)
	assert.Equal(t, 0, sum.Succeeded)
	assert.Equal(t, 2, oracle.seen, "every file is still classified")
	require.Len(t, sum.Failures, 2)
	for _, f := range sum.Failures {
		assert.ErrorIs(t, f.Err, ErrRename)
		assert.ErrorIs(t, f.Err, fs.ErrPermission)
	}
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, dirNames(t, dir))
}

func TestProcessPaths_ReportsFailures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeJPEG(t, dir, "good.jpg")
	bad := writeFile(t, dir, "bad.jpg", []byte("not an image"))

	var reported []ItemFailure
	cfg := &Config{
		Oracle:    upperOracle(),
		OnFailure: func(f ItemFailure) { reported = append(reported, f) },
	}

	sum, err := cfg.ProcessPaths(context.Background(), []string{bad, good})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Succeeded)
	require.Len(t, reported, 1)
	assert.Equal(t, bad, reported[0].Path)
	assert.ErrorIs(t, reported[0].Err, ErrDecode)
	assert.Equal(t, sum.Failures, reported)
}

func TestProcessDirectory_DecodeFailureIsolated(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "broken.jpg", []byte("nope"))
	writeJPEG(t, dir, "fine.jpg")

	cfg := &Config{Oracle: &fakeOracle{set: poseWith(0, 2, 0.9)}}
	sum, err := cfg.ProcessDirectory(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Attempted)
	assert.Equal(t, 1, sum.Succeeded)
	require.Len(t, sum.Failures, 1)
	assert.ErrorIs(t, sum.Failures[0].Err, ErrDecode)
	assert.Equal(t, []string{"broken.jpg", "fine_L.jpg"}, dirNames(t, dir))
}

func TestProcessDirectory_RecoversPanics(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeJPEG(t, dir, "a.jpg")
	writeJPEG(t, dir, "b.jpg")

	oracle := &fakeOracle{panics: true}
	var panics []string
	cfg := &Config{Oracle: oracle, OnPanic: func(tag string, _ any) { panics = append(panics, tag) }}

	sum, err := cfg.ProcessDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Attempted)
	assert.Zero(t, sum.Succeeded)
	assert.Len(t, sum.Failures, 2)
	assert.Equal(t, []string{"tag", "tag"}, panics)
	assert.Equal(t, 2, oracle.closes, "detector must be released even when it panics")
}

func TestProcessDirectory_MissingDir(t *testing.T) {
	t.Parallel()

	cfg := &Config{Oracle: &fakeOracle{}}
	_, err := cfg.ProcessDirectory(context.Background(), filepath.Join(t.TempDir(), "INPUT"))
	assert.ErrorIs(t, err, ErrDirectoryNotFound)

	file := writeJPEG(t, t.TempDir(), "x.jpg")
	_, err = cfg.ProcessDirectory(context.Background(), file)
	assert.ErrorIs(t, err, ErrDirectoryNotFound)
}

func TestProcessDirectory_StopsWhenContextDone(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeJPEG(t, dir, "a.jpg")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := &Config{Oracle: &fakeOracle{}}
	sum, err := cfg.ProcessDirectory(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sum.Attempted)
	assert.FileExists(t, filepath.Join(dir, "a.jpg"))
}

func TestListCandidates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{
		"plain.jpg", "UPPER.JPG", "mixed.Jpg",
		"x_binary_mask.jpg", "x_fine_mask.jpg", "x_U.jpg", "x_L.jpg",
		"a_Long_coat.jpg", // contains _L: reserved, match is a plain substring
		"photo.png", "notes.txt",
	} {
		writeFile(t, dir, name, []byte("x"))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.jpg"), 0o755))

	cfg := &Config{}
	got, err := cfg.ListCandidates(dir)
	require.NoError(t, err)

	want := []string{
		filepath.Join(dir, "UPPER.JPG"),
		filepath.Join(dir, "mixed.Jpg"),
		filepath.Join(dir, "plain.jpg"),
	}
	assert.ElementsMatch(t, want, got)
}

func TestListCandidates_CustomExtensions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.jpg", []byte("x"))
	writeFile(t, dir, "b.PNG", []byte("x"))
	writeFile(t, dir, "c.webp", []byte("x"))

	cfg := &Config{Extensions: []string{".png", ".webp"}}
	got, err := cfg.ListCandidates(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "b.PNG"), filepath.Join(dir, "c.webp")}, got)
}

func TestIsReserved(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"shirt.jpg", false},
		{"shirt_U.jpg", true},
		{"shirt_L.jpg", true},
		{"shirt_binary_mask.jpg", true},
		{"shirt_fine_mask.jpg", true},
		{"shirt_u.jpg", false},
		{"shirt_l.jpg", false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, IsReserved(tc.name))
		})
	}
}

func TestProcessPaths_Order(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := []string{writeJPEG(t, dir, "z.jpg"), writeJPEG(t, dir, "y.jpg")}

	var seen []string
	cfg := &Config{
		Oracle: DetectFunc(func(context.Context, image.Image) (LandmarkSet, error) {
			return nil, nil
		}),
		OnClassification: func(ev ClassificationEvent) { seen = append(seen, filepath.Base(ev.Path)) },
	}
	sum, err := cfg.ProcessPaths(context.Background(), paths)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Succeeded)
	assert.Equal(t, []string{"z.jpg", "y.jpg"}, seen)
}
