package web

import "embed"

// StaticFS holds the embedded client script and stylesheet.
//
//go:embed static/*
var StaticFS embed.FS

//go:embed templates/*.html
var templateFS embed.FS
