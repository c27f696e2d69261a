package sideoutput

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ABC-KANG/abc-res-link/internal/restable"
)

func tableWithVisibility(t *testing.T, pub, priv string) *restable.Table {
	t.Helper()
	tbl := restable.New()
	pkgID := uint8(0x7f)
	tbl.Packages = append(tbl.Packages, &restable.Package{Name: "com.x", ID: &pkgID})
	tyID := uint8(1)
	ty := &restable.Type{Tag: restable.TypeString, ID: &tyID}
	tbl.Packages[0].Types = append(tbl.Packages[0].Types, ty)

	pubID, privID := uint16(0), uint16(1)
	ty.Entries = append(ty.Entries,
		&restable.Entry{Name: pub, ID: &pubID, Visibility: restable.VisibilityPublic},
		&restable.Entry{Name: priv, ID: &privID, Visibility: restable.VisibilityPrivate},
	)
	return tbl
}

func TestWriteJavaSymbolsEmitsEverythingWithoutPrivatePackage(t *testing.T) {
	t.Parallel()

	tbl := tableWithVisibility(t, "pub_name", "priv_name")
	var buf bytes.Buffer
	w := &FileJavaWriter{W: &buf}

	err := w.WriteJavaSymbols(tbl, "com.x", nil, "", "", false)
	assert.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "pub_name")
	assert.Contains(t, out, "priv_name")
}

func TestWriteJavaSymbolsRoutesPrivateSymbolsToTheirOwnPackage(t *testing.T) {
	t.Parallel()

	tbl := tableWithVisibility(t, "pub_name", "priv_name")
	var buf bytes.Buffer
	w := &FileJavaWriter{W: &buf}

	err := w.WriteJavaSymbols(tbl, "com.x", nil, "com.x.private", "", false)
	assert.NoError(t, err)
	out := buf.String()

	// The original package only gets the public symbol.
	pkgSplit := bytes.SplitN(buf.Bytes(), []byte("package com.x.private;"), 2)
	assert.Len(t, pkgSplit, 2, "expected the private-symbols package to be emitted")
	original := string(pkgSplit[0])
	assert.Contains(t, original, "pub_name")
	assert.NotContains(t, original, "priv_name")

	// The private-symbols package gets both.
	privateSection := string(pkgSplit[1])
	assert.Contains(t, privateSection, "pub_name")
	assert.Contains(t, privateSection, "priv_name")
	assert.Contains(t, out, "package com.x.private;")
}
