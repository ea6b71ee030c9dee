package models

import "github.com/a-h/templ"

type NavItem struct {
	Name string
	URL  string
}

type Navigation struct {
	Items []NavItem
}

type LayoutTempl struct {
	Title     string
	Nav       Navigation
	ActiveNav string
	Content   templ.Component
}

// MainNav mirrors the dashboard sections; the URLs are in-page anchors so the
// active filter query string is kept.
var MainNav = Navigation{
	Items: []NavItem{
		{Name: "Destinations", URL: "#destinations"},
		{Name: "Analysis", URL: "#analysis"},
		{Name: "Map", URL: "#map"},
		{Name: "Users", URL: "#users"},
		{Name: "Reviews", URL: "#reviews"},
	},
}
