package xmlres

// StripNamespaces implements NamespaceRemover: it drops every namespace
// declaration and unqualifies every element and attribute in doc. It is
// applied after linking, when the CLI's --no-xml-namespaces flag is set,
// since by then every reference has already been resolved by name and no
// longer needs the namespace URI to do so.
func StripNamespaces(doc *Document) {
	doc.Walk(func(e *Element) {
		e.NamespaceDecls = nil
		e.Namespace = ""
		for i := range e.Attributes {
			e.Attributes[i].Namespace = ""
		}
	})
}
