package api

import (
	"context"

	"github.com/tendant/schoolsite/pkg/schoolsite"
)

// HeaderResponse is the response body for a header; nav links are embedded
type HeaderResponse struct {
	ID       int64                 `json:"id"`
	Logo     string                `json:"logo"`
	Phone    string                `json:"phone"`
	Email    string                `json:"email"`
	NavLinks []*schoolsite.NavLink `json:"nav_links"`
}

// HeroSlideResponse is the response body for a hero slide
type HeroSlideResponse struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Image    string `json:"image"`
	Order    int    `json:"order"`
}

// AboutResponse is the response body for the about block
type AboutResponse struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	Image      string `json:"image"`
	TitleColor string `json:"title_color"`
	BodyColor  string `json:"body_color"`
}

// DirectorResponse is the response body for the director block
type DirectorResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	Bio       string `json:"bio"`
	Image     string `json:"image"`
	NameColor string `json:"name_color"`
	BioColor  string `json:"bio_color"`
}

// ImageBlockResponse is the response body for one page image
type ImageBlockResponse struct {
	ID      int64  `json:"id"`
	Image   string `json:"image"`
	Caption string `json:"caption"`
	Alt     string `json:"alt"`
	Order   int    `json:"order"`
}

// PageResponse is the response body for a page with its images in display order
type PageResponse struct {
	ID     int64                `json:"id"`
	Slug   string               `json:"slug"`
	Title  string               `json:"title"`
	Body   string               `json:"body"`
	Order  int                  `json:"order"`
	Images []ImageBlockResponse `json:"images"`
}

// CertificateResponse is the response body for a certificate
type CertificateResponse struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Year     string `json:"year"`
	Image    string `json:"image"`
	Category string `json:"category"`
	Level    string `json:"level"`
	Order    int    `json:"order"`
}

// presenter turns records into response bodies with resolved media URLs
type presenter struct {
	service schoolsite.Service
}

func (p presenter) present(ctx context.Context, rec schoolsite.Record) (any, error) {
	switch r := rec.(type) {
	case *schoolsite.Header:
		links, err := p.navLinks(ctx, r.NavLinkIDs)
		if err != nil {
			return nil, err
		}
		return HeaderResponse{
			ID:       r.ID,
			Logo:     p.service.ResolveURL(r, schoolsite.HeaderLogo.Name),
			Phone:    r.Phone,
			Email:    r.Email,
			NavLinks: links,
		}, nil
	case *schoolsite.HeroSlide:
		return HeroSlideResponse{
			ID:       r.ID,
			Title:    r.Title,
			Subtitle: r.Subtitle,
			Image:    p.service.ResolveURL(r, schoolsite.HeroSlideImage.Name),
			Order:    r.Order,
		}, nil
	case *schoolsite.About:
		return AboutResponse{
			ID:         r.ID,
			Title:      r.Title,
			Body:       r.Body,
			Image:      p.service.ResolveURL(r, schoolsite.AboutImage.Name),
			TitleColor: r.TitleColor,
			BodyColor:  r.BodyColor,
		}, nil
	case *schoolsite.Director:
		return DirectorResponse{
			ID:        r.ID,
			Name:      r.Name,
			Title:     r.Title,
			Bio:       r.Bio,
			Image:     p.service.ResolveURL(r, schoolsite.DirectorImage.Name),
			NameColor: r.NameColor,
			BioColor:  r.BioColor,
		}, nil
	case *schoolsite.ImageBlock:
		return p.imageBlock(r), nil
	case *schoolsite.Page:
		blocks, err := p.service.List(ctx, schoolsite.KindImageBlock, schoolsite.ListFilter{PageID: r.ID})
		if err != nil {
			return nil, err
		}
		images := make([]*schoolsite.ImageBlock, 0, len(blocks))
		for _, b := range blocks {
			images = append(images, b.(*schoolsite.ImageBlock))
		}
		return p.page(r, images), nil
	case *schoolsite.Certificate:
		return CertificateResponse{
			ID:       r.ID,
			Title:    r.Title,
			Year:     r.Year,
			Image:    p.service.ResolveURL(r, schoolsite.CertificateImage.Name),
			Category: r.Category,
			Level:    r.Level,
			Order:    r.Order,
		}, nil
	}
	// records without media serialize as stored
	return rec, nil
}

func (p presenter) presentAll(ctx context.Context, recs []schoolsite.Record) ([]any, error) {
	out := make([]any, 0, len(recs))
	for _, rec := range recs {
		body, err := p.present(ctx, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, body)
	}
	return out, nil
}

func (p presenter) imageBlock(r *schoolsite.ImageBlock) ImageBlockResponse {
	return ImageBlockResponse{
		ID:      r.ID,
		Image:   p.service.ResolveURL(r, schoolsite.ImageBlockImage.Name),
		Caption: r.Caption,
		Alt:     r.Alt,
		Order:   r.Order,
	}
}

func (p presenter) page(r *schoolsite.Page, images []*schoolsite.ImageBlock) PageResponse {
	resp := PageResponse{
		ID:     r.ID,
		Slug:   r.Slug,
		Title:  r.Title,
		Body:   r.Body,
		Order:  r.Order,
		Images: make([]ImageBlockResponse, 0, len(images)),
	}
	for _, img := range images {
		resp.Images = append(resp.Images, p.imageBlock(img))
	}
	return resp
}

// navLinks loads the header's links in display order; dangling ids are skipped
func (p presenter) navLinks(ctx context.Context, ids []int64) ([]*schoolsite.NavLink, error) {
	out := []*schoolsite.NavLink{}
	if len(ids) == 0 {
		return out, nil
	}
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	all, err := p.service.List(ctx, schoolsite.KindNavLink, schoolsite.ListFilter{})
	if err != nil {
		return nil, err
	}
	for _, rec := range all {
		if want[rec.GetID()] {
			out = append(out, rec.(*schoolsite.NavLink))
		}
	}
	return out, nil
}
