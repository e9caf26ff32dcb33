package domain

type SocialLinks struct {
	Twitter   string `json:"twitter"`
	Instagram string `json:"instagram"`
	Facebook  string `json:"facebook"`
}

// ReceiptTemplate holds the branding printed on receipts.
type ReceiptTemplate struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	BrandColor  string      `json:"brand_color"`
	Logo        *string     `json:"logo"`
	HeaderText  string      `json:"header_text"`
	FooterText  string      `json:"footer_text"`
	SocialLinks SocialLinks `json:"social_links"`
}
