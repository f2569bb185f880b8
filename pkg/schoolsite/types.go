package schoolsite

import (
	"fmt"
	"time"
)

// Certificate categories.
const (
	CategoryTeachers = "teachers"
	CategoryStudents = "students"
)

// Certificate levels.
const (
	LevelDistrict = "district"
	LevelCity     = "city"
)

// Media manifest. Every media field of every record type is declared here.
var (
	HeaderLogo       = MediaField{Name: "logo", UploadTo: "header/"}
	HeroSlideImage   = MediaField{Name: "image", UploadTo: "hero/"}
	AboutImage       = MediaField{Name: "image", UploadTo: "about/"}
	DirectorImage    = MediaField{Name: "image", UploadTo: "director/"}
	ImageBlockImage  = MediaField{Name: "image", UploadTo: "images/"}
	CertificateImage = MediaField{Name: "image", UploadTo: "certificates/", UploadPath: certificateUploadPath}
)

// certificateUploadPath files certificates under their category.
func certificateUploadPath(rec Record, filename string) (string, error) {
	c, ok := rec.(*Certificate)
	if !ok {
		return "", fmt.Errorf("expected certificate, got %s", rec.Kind())
	}
	if !IsValidCategory(c.Category) {
		return "", ErrInvalidCategory
	}
	return fmt.Sprintf("certificates/%s/%s", c.Category, filename), nil
}

// NavLink is one entry of the site navigation.
type NavLink struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Href  string `json:"href"`
	Order int    `json:"order"`
}

func (r *NavLink) Kind() Kind                  { return KindNavLink }
func (r *NavLink) GetID() int64                { return r.ID }
func (r *NavLink) SetID(id int64)              { r.ID = id }
func (r *NavLink) MediaFields() []MediaField   { return nil }
func (r *NavLink) MediaRef(name string) *string { return nil }

// Header holds the logo, contact line and navigation of the site header.
type Header struct {
	ID         int64   `json:"id"`
	Logo       string  `json:"logo"`
	Phone      string  `json:"phone"`
	Email      string  `json:"email"`
	NavLinkIDs []int64 `json:"nav_link_ids"`
}

func (r *Header) Kind() Kind                { return KindHeader }
func (r *Header) GetID() int64              { return r.ID }
func (r *Header) SetID(id int64)            { r.ID = id }
func (r *Header) MediaFields() []MediaField { return []MediaField{HeaderLogo} }
func (r *Header) MediaRef(name string) *string {
	if name == HeaderLogo.Name {
		return &r.Logo
	}
	return nil
}

// HeroSlide is one slide of the landing page carousel.
type HeroSlide struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Image    string `json:"image"`
	Order    int    `json:"order"`
}

func (r *HeroSlide) Kind() Kind                { return KindHeroSlide }
func (r *HeroSlide) GetID() int64              { return r.ID }
func (r *HeroSlide) SetID(id int64)            { r.ID = id }
func (r *HeroSlide) MediaFields() []MediaField { return []MediaField{HeroSlideImage} }
func (r *HeroSlide) MediaRef(name string) *string {
	if name == HeroSlideImage.Name {
		return &r.Image
	}
	return nil
}

// About is the "about the school" block.
type About struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	Image      string `json:"image"`
	TitleColor string `json:"title_color"`
	BodyColor  string `json:"body_color"`
}

func (r *About) Kind() Kind                { return KindAbout }
func (r *About) GetID() int64              { return r.ID }
func (r *About) SetID(id int64)            { r.ID = id }
func (r *About) MediaFields() []MediaField { return []MediaField{AboutImage} }
func (r *About) MediaRef(name string) *string {
	if name == AboutImage.Name {
		return &r.Image
	}
	return nil
}

// Stat is one headline number of the stats strip.
type Stat struct {
	ID     int64  `json:"id"`
	Number string `json:"number"`
	Label  string `json:"label"`
	Order  int    `json:"order"`
}

func (r *Stat) Kind() Kind                   { return KindStat }
func (r *Stat) GetID() int64                 { return r.ID }
func (r *Stat) SetID(id int64)               { r.ID = id }
func (r *Stat) MediaFields() []MediaField    { return nil }
func (r *Stat) MediaRef(name string) *string { return nil }

// Director is the director bio block.
type Director struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	Bio       string `json:"bio"`
	Image     string `json:"image"`
	NameColor string `json:"name_color"`
	BioColor  string `json:"bio_color"`
}

func (r *Director) Kind() Kind                { return KindDirector }
func (r *Director) GetID() int64              { return r.ID }
func (r *Director) SetID(id int64)            { r.ID = id }
func (r *Director) MediaFields() []MediaField { return []MediaField{DirectorImage} }
func (r *Director) MediaRef(name string) *string {
	if name == DirectorImage.Name {
		return &r.Image
	}
	return nil
}

// ContactInfo is the contact block.
type ContactInfo struct {
	ID        int64  `json:"id"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	MapEmbed  string `json:"map_embed"`
	TextColor string `json:"text_color"`
}

func (r *ContactInfo) Kind() Kind                   { return KindContactInfo }
func (r *ContactInfo) GetID() int64                 { return r.ID }
func (r *ContactInfo) SetID(id int64)               { r.ID = id }
func (r *ContactInfo) MediaFields() []MediaField    { return nil }
func (r *ContactInfo) MediaRef(name string) *string { return nil }

// Footer is the footer block. Links holds a JSON document edited as text.
type Footer struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Links string `json:"links"`
}

func (r *Footer) Kind() Kind                   { return KindFooter }
func (r *Footer) GetID() int64                 { return r.ID }
func (r *Footer) SetID(id int64)               { r.ID = id }
func (r *Footer) MediaFields() []MediaField    { return nil }
func (r *Footer) MediaRef(name string) *string { return nil }

// Page is a static page. Its images are owned ImageBlock children.
type Page struct {
	ID    int64  `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Order int    `json:"order"`
}

func (r *Page) Kind() Kind                   { return KindPage }
func (r *Page) GetID() int64                 { return r.ID }
func (r *Page) SetID(id int64)               { r.ID = id }
func (r *Page) MediaFields() []MediaField    { return nil }
func (r *Page) MediaRef(name string) *string { return nil }

// ImageBlock is one image of a page.
type ImageBlock struct {
	ID      int64  `json:"id"`
	PageID  int64  `json:"page_id"`
	Image   string `json:"image"`
	Caption string `json:"caption"`
	Alt     string `json:"alt"`
	Order   int    `json:"order"`
}

func (r *ImageBlock) Kind() Kind                { return KindImageBlock }
func (r *ImageBlock) GetID() int64              { return r.ID }
func (r *ImageBlock) SetID(id int64)            { r.ID = id }
func (r *ImageBlock) MediaFields() []MediaField { return []MediaField{ImageBlockImage} }
func (r *ImageBlock) MediaRef(name string) *string {
	if name == ImageBlockImage.Name {
		return &r.Image
	}
	return nil
}

// Certificate is an achievement certificate of a teacher or a student.
type Certificate struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Year      string    `json:"year"`
	Image     string    `json:"image"`
	Category  string    `json:"category"`
	Level     string    `json:"level"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Certificate) Kind() Kind                { return KindCertificate }
func (r *Certificate) GetID() int64              { return r.ID }
func (r *Certificate) SetID(id int64)            { r.ID = id }
func (r *Certificate) MediaFields() []MediaField { return []MediaField{CertificateImage} }
func (r *Certificate) MediaRef(name string) *string {
	if name == CertificateImage.Name {
		return &r.Image
	}
	return nil
}

// IsValidCategory reports whether c is a known certificate category.
func IsValidCategory(c string) bool {
	return c == CategoryTeachers || c == CategoryStudents
}

// IsValidLevel reports whether l is a known certificate level.
func IsValidLevel(l string) bool {
	return l == LevelDistrict || l == LevelCity
}

// NewRecord returns a zero record of the given kind.
func NewRecord(kind Kind) (Record, error) {
	switch kind {
	case KindNavLink:
		return &NavLink{}, nil
	case KindHeader:
		return &Header{}, nil
	case KindHeroSlide:
		return &HeroSlide{}, nil
	case KindAbout:
		return &About{}, nil
	case KindStat:
		return &Stat{}, nil
	case KindDirector:
		return &Director{}, nil
	case KindContactInfo:
		return &ContactInfo{}, nil
	case KindFooter:
		return &Footer{}, nil
	case KindPage:
		return &Page{}, nil
	case KindImageBlock:
		return &ImageBlock{}, nil
	case KindCertificate:
		return &Certificate{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

// CloneRecord returns a shallow copy of rec; slices are copied too.
func CloneRecord(rec Record) Record {
	switch r := rec.(type) {
	case *NavLink:
		c := *r
		return &c
	case *Header:
		c := *r
		c.NavLinkIDs = append([]int64(nil), r.NavLinkIDs...)
		return &c
	case *HeroSlide:
		c := *r
		return &c
	case *About:
		c := *r
		return &c
	case *Stat:
		c := *r
		return &c
	case *Director:
		c := *r
		return &c
	case *ContactInfo:
		c := *r
		return &c
	case *Footer:
		c := *r
		return &c
	case *Page:
		c := *r
		return &c
	case *ImageBlock:
		c := *r
		return &c
	case *Certificate:
		c := *r
		return &c
	default:
		return rec
	}
}
