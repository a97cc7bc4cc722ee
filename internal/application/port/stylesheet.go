package port

//go:generate mockgen -source=stylesheet.go -destination=mocks/mock_stylesheet.go -package=mocks

// StyleSheetService registers user stylesheets with the presentation layer.
type StyleSheetService interface {
	Load(uri string) error
	Unload(uri string) error
	IsRegistered(uri string) bool
}
