package maintenance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/tendant/schoolsite/pkg/schoolsite"
)

// SeedFiles lists the bundled front-end images by the media folder they belong to.
var SeedFiles = map[string][]string{
	"hero": {
		"modern-school-students.jpg",
		"students-learning-in-classroom-together.jpg",
		"diverse-students-teamwork-achievement.jpg",
	},
	"about":    {"123.JPG"},
	"director": {"school-director-professional-portrait.jpg"},
}

// SeedFolderIndex maps each seed basename to its folder.
func SeedFolderIndex() map[string]string {
	out := make(map[string]string)
	for folder, files := range SeedFiles {
		for _, f := range files {
			out[f] = folder
		}
	}
	return out
}

var seedSlides = []schoolsite.HeroSlide{
	{Image: "hero/modern-school-students.jpg", Title: "№59 Мектеп гимназиясына қош келдіңіз", Subtitle: "Болашақтың лидерлерін қалыптастыратын білім ордасы", Order: 1},
	{Image: "hero/students-learning-in-classroom-together.jpg", Title: "Сапалы білім беру", Subtitle: "Озық технологиялар мен ынталы мұғалімдерден құралған білім ордасы", Order: 2},
	{Image: "hero/diverse-students-teamwork-achievement.jpg", Title: "Жетістіктің жолы", Subtitle: "әрбір оқушының жеке қабілеті ашылып, жан-жақты дамытылады", Order: 3},
}

var seedAbout = schoolsite.About{
	Title: "Мектеп туралы",
	Body:  "№50 мектеп-гимназия – балалардың толыққанды дамуы мен озық білім алуына бағытталған заманауи орталық",
	Image: "about/123.JPG",
}

var seedDirector = schoolsite.Director{
	Name:  "Асан Ержанұлы",
	Title: "Директор",
	Bio:   "Мектебімізде озық әдіс-тәсілдер қолданылады...",
	Image: "director/school-director-professional-portrait.jpg",
}

var seedStats = []schoolsite.Stat{
	{Number: "1420", Label: "Оқушылар", Order: 1},
	{Number: "104", Label: "Мұғалімдер", Order: 2},
	{Number: "9", Label: "Жыл мектепке", Order: 3},
	{Number: "200+", Label: "Жетістіктер", Order: 4},
}

// ImportStats counts the outcome of ImportStatic
type ImportStats struct {
	Copied  int
	Missing int
	Created int
}

// ImportStatic copies the seed images from frontPublic into mediaRoot and
// creates the seed records. Existing files and records are left alone, so
// running it twice is harmless.
func ImportStatic(ctx context.Context, frontPublic, mediaRoot string, repo schoolsite.Repository, out io.Writer) (ImportStats, error) {
	var stats ImportStats
	if _, err := os.Stat(frontPublic); err != nil {
		return stats, fmt.Errorf("front public directory not found: %s", frontPublic)
	}

	folders := make([]string, 0, len(SeedFiles))
	for folder := range SeedFiles {
		folders = append(folders, folder)
	}
	sort.Strings(folders)

	for _, folder := range folders {
		destDir := filepath.Join(mediaRoot, folder)
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return stats, err
		}
		for _, name := range SeedFiles[folder] {
			src, ok := findSeed(frontPublic, name)
			if !ok {
				fmt.Fprintf(out, "%s not found\n", filepath.Join(frontPublic, name))
				stats.Missing++
				continue
			}
			dst := filepath.Join(destDir, name)
			if _, err := os.Stat(dst); err == nil {
				fmt.Fprintf(out, "%s already exists, skipping copy\n", dst)
				continue
			}
			if err := copyFile(src, dst); err != nil {
				return stats, fmt.Errorf("copy %s: %w", src, err)
			}
			fmt.Fprintf(out, "Copied %s -> %s\n", src, dst)
			stats.Copied++
		}
	}

	created, err := seedRecords(ctx, repo, out)
	stats.Created = created
	if err != nil {
		return stats, err
	}
	fmt.Fprintln(out, "Import complete")
	return stats, nil
}

// findSeed looks in dir, then in its student/ and teacher/ subfolders
func findSeed(dir, name string) (string, bool) {
	for _, candidate := range []string{
		filepath.Join(dir, name),
		filepath.Join(dir, "student", name),
		filepath.Join(dir, "teacher", name),
	} {
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}
	return "", false
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	outFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, outFile.Close())
	}()
	_, err = io.Copy(outFile, in)
	return err
}

func seedRecords(ctx context.Context, repo schoolsite.Repository, out io.Writer) (int, error) {
	created := 0

	slides, err := repo.List(ctx, schoolsite.KindHeroSlide, schoolsite.ListFilter{})
	if err != nil {
		return created, err
	}
	titles := make(map[string]bool, len(slides))
	for _, rec := range slides {
		titles[rec.(*schoolsite.HeroSlide).Title] = true
	}
	for _, s := range seedSlides {
		if titles[s.Title] {
			fmt.Fprintf(out, "HeroSlide '%s' already exists, skipping\n", s.Title)
			continue
		}
		slide := s
		if err := repo.Save(ctx, &slide); err != nil {
			return created, fmt.Errorf("create hero slide: %w", err)
		}
		fmt.Fprintf(out, "Created HeroSlide: %s\n", s.Title)
		created++
	}

	about := seedAbout
	ok, err := createIfEmpty(ctx, repo, &about)
	if err != nil {
		return created, err
	}
	if ok {
		fmt.Fprintln(out, "Created About")
		created++
	} else {
		fmt.Fprintln(out, "About already exists, skipping")
	}

	director := seedDirector
	ok, err = createIfEmpty(ctx, repo, &director)
	if err != nil {
		return created, err
	}
	if ok {
		fmt.Fprintln(out, "Created Director")
		created++
	} else {
		fmt.Fprintln(out, "Director already exists, skipping")
	}

	stats, err := repo.List(ctx, schoolsite.KindStat, schoolsite.ListFilter{})
	if err != nil {
		return created, err
	}
	existing := make(map[[2]string]bool, len(stats))
	for _, rec := range stats {
		st := rec.(*schoolsite.Stat)
		existing[[2]string{st.Number, st.Label}] = true
	}
	for _, s := range seedStats {
		if existing[[2]string{s.Number, s.Label}] {
			fmt.Fprintf(out, "Stat %s exists, skipping\n", s.Label)
			continue
		}
		stat := s
		if err := repo.Save(ctx, &stat); err != nil {
			return created, fmt.Errorf("create stat: %w", err)
		}
		fmt.Fprintf(out, "Created Stat: %s\n", s.Label)
		created++
	}
	return created, nil
}

func createIfEmpty(ctx context.Context, repo schoolsite.Repository, rec schoolsite.Record) (bool, error) {
	recs, err := repo.List(ctx, rec.Kind(), schoolsite.ListFilter{})
	if err != nil {
		return false, err
	}
	if len(recs) > 0 {
		return false, nil
	}
	if err := repo.Save(ctx, rec); err != nil {
		return false, fmt.Errorf("create %s: %w", rec.Kind(), err)
	}
	return true, nil
}
