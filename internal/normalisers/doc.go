// Package normalisers provides implementations of the Normaliser interface
// for meeting note formats. Each normaliser turns the bytes of one file type
// into a Note with its title, meeting date and project resolved.
//
// This package holds the front matter and file name helpers shared by the
// format packages.
package normalisers
