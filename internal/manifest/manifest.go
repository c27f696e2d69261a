// Package manifest synthesizes the minimal per-split AndroidManifest.xml
// documents the TableSplitter's split packages carry (spec 4.8): a root
// manifest element naming the split and declaring no code, linked
// through the same XmlReferenceLinker as every other XML resource.
package manifest

import (
	"strings"

	"github.com/ABC-KANG/abc-res-link/internal/restable"
	"github.com/ABC-KANG/abc-res-link/internal/xmlres"
)

const androidNS = "http://schemas.android.com/apk/res/android"

// Params carries the values a synthesized split manifest needs beyond
// the constraint's own label.
type Params struct {
	Package      string
	VersionCode  int64
	HasVersion   bool
	RevisionCode int64
	HasRevision  bool
}

// Synthesize builds the manifest document for one split: a root
// <manifest> carrying package/versionCode/revisionCode/split, with a
// single <application android:hasCode="false"/> child.
func Synthesize(p Params, constraintLabels []string) *xmlres.Document {
	manifestEl := &xmlres.Element{
		Name: "manifest",
		NamespaceDecls: []xmlres.NamespaceDecl{
			{Prefix: "android", URI: androidNS},
		},
	}
	manifestEl.Attributes = append(manifestEl.Attributes, xmlres.Attribute{
		Name:     "package",
		RawValue: p.Package,
		Value:    restable.RawString{Value: p.Package},
	})
	if p.HasVersion {
		manifestEl.Attributes = append(manifestEl.Attributes, xmlres.Attribute{
			Namespace: androidNS,
			Name:      "versionCode",
			Value:     restable.Primitive{Kind: restable.PrimitiveInt, Int: p.VersionCode},
		})
	}
	if p.HasRevision {
		manifestEl.Attributes = append(manifestEl.Attributes, xmlres.Attribute{
			Namespace: androidNS,
			Name:      "revisionCode",
			Value:     restable.Primitive{Kind: restable.PrimitiveInt, Int: p.RevisionCode},
		})
	}
	manifestEl.Attributes = append(manifestEl.Attributes, xmlres.Attribute{
		Name:     "split",
		RawValue: SplitName(constraintLabels),
		Value:    restable.RawString{Value: SplitName(constraintLabels)},
	})

	applicationEl := &xmlres.Element{
		Name: "application",
		Attributes: []xmlres.Attribute{
			{
				Namespace: androidNS,
				Name:      "hasCode",
				Value:     restable.Primitive{Kind: restable.PrimitiveBool, Bool: false},
				RawValue:  "false",
			},
		},
	}
	manifestEl.Children = append(manifestEl.Children, xmlres.Node{Kind: xmlres.KindElement, Element: applicationEl})

	return &xmlres.Document{Root: manifestEl}
}

// SplitName builds the "config.a_b_c" split identifier from the
// constraint's raw qualifier labels, in the order given.
func SplitName(labels []string) string {
	return "config." + strings.Join(labels, "_")
}

// RenamePackage rewrites the root manifest element's package attribute,
// implementing --rename-manifest-package.
func RenamePackage(doc *xmlres.Document, newPackage string) {
	if doc.Root == nil {
		return
	}
	if attr := doc.Root.Find("", "package"); attr != nil {
		attr.RawValue = newPackage
		attr.Value = restable.RawString{Value: newPackage}
	}
}

// SetVersion overrides the root manifest's versionCode/versionName/
// revisionCode attributes, implementing --version-code/--version-name.
// A zero-value Params field whose Has flag is unset leaves the
// corresponding attribute untouched.
func SetVersion(doc *xmlres.Document, p Params, versionName string, hasVersionName bool) {
	if doc.Root == nil {
		return
	}
	if p.HasVersion {
		setIntAttr(doc.Root, "versionCode", p.VersionCode)
	}
	if p.HasRevision {
		setIntAttr(doc.Root, "revisionCode", p.RevisionCode)
	}
	if hasVersionName {
		setStringAttr(doc.Root, "versionName", versionName)
	}
}

func setIntAttr(e *xmlres.Element, name string, v int64) {
	if attr := e.Find(androidNS, name); attr != nil {
		attr.Value = restable.Primitive{Kind: restable.PrimitiveInt, Int: v}
		return
	}
	e.Attributes = append(e.Attributes, xmlres.Attribute{
		Namespace: androidNS, Name: name, Value: restable.Primitive{Kind: restable.PrimitiveInt, Int: v},
	})
}

func setStringAttr(e *xmlres.Element, name, v string) {
	if attr := e.Find(androidNS, name); attr != nil {
		attr.RawValue = v
		attr.Value = restable.RawString{Value: v}
		return
	}
	e.Attributes = append(e.Attributes, xmlres.Attribute{
		Namespace: androidNS, Name: name, RawValue: v, Value: restable.RawString{Value: v},
	})
}

// SetTargetSdkVersion overrides the targetSdkVersion attribute of the
// manifest's <uses-sdk> element, implementing --target-sdk-version. A
// manifest with no <uses-sdk> child gets one synthesized as the root's
// first child, matching how aapt2 treats an absent uses-sdk as
// "android:minSdkVersion=1" by default.
func SetTargetSdkVersion(doc *xmlres.Document, version int) {
	if doc.Root == nil {
		return
	}
	var usesSdk *xmlres.Element
	doc.Walk(func(e *xmlres.Element) {
		if e.Name == "uses-sdk" {
			usesSdk = e
		}
	})
	if usesSdk == nil {
		usesSdk = &xmlres.Element{Name: "uses-sdk"}
		doc.Root.Children = append([]xmlres.Node{{Kind: xmlres.KindElement, Element: usesSdk}}, doc.Root.Children...)
	}
	setIntAttr(usesSdk, "targetSdkVersion", int64(version))
}

// RenameInstrumentationTarget rewrites every <instrumentation
// android:targetPackage> in doc, implementing
// --rename-instrumentation-target-package.
func RenameInstrumentationTarget(doc *xmlres.Document, newTarget string) {
	doc.Walk(func(e *xmlres.Element) {
		if e.Name != "instrumentation" {
			return
		}
		if attr := e.Find(androidNS, "targetPackage"); attr != nil {
			attr.RawValue = newTarget
			attr.Value = restable.RawString{Value: newTarget}
		}
	})
}
