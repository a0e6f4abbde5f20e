package codegen

const swiftTemplate = `// Code generated by fittext from {{.TableName}}. DO NOT EDIT.
// Edit the candidate table and run ` + "`fittext generate`" + ` again.

import Foundation
import SwiftUI
import AccessibleText

enum {{.Container}} {
    static func {{.TextAccessor}}(key: String, _ args: Any...) -> AccessibleTexts {
        let values = formatArguments(args)
        switch key {
{{- range .Texts}}
        case "{{.Key}}":
            return [
{{- range .Renderings}}
                Text(String(format: {{.}}, arguments: values)),
{{- end}}
            ]
{{- end}}
        default:
            return []
        }
    }

    static func {{.TitleAccessor}}<Content: View>(key: String, _ args: Any..., content: () -> Content) -> AccessibleNavigationTitles<Content> {
        let values = formatArguments(args)
        switch key {
{{- range .Titles}}
        case "{{.Key}}":
            return AccessibleNavigationTitles([
{{- range .Renderings}}
                Text(String(format: {{.}}, arguments: values)),
{{- end}}
            ], content: content)
{{- end}}
        default:
            return AccessibleNavigationTitles([], content: content)
        }
    }

    // Every slot is %N$@, so each argument is passed as its description.
    private static func formatArguments(_ args: [Any]) -> [CVarArg] {
        args.map { String(describing: $0) as NSString }
    }
}
`

const goTemplate = `// Code generated by fittext from {{.TableName}}. DO NOT EDIT.

package {{.Package}}

import "git.home.luguber.info/inful/fittext/pkg/fit"

// {{.Container}} holds the candidate renderings of every content key.
var {{.Container}} = fit.NewCatalog(textRenderings, titleRenderings)

var textRenderings = map[string][]string{
{{- range .Texts}}
	"{{.Key}}": {
{{- range .Renderings}}
		{{.}},
{{- end}}
	},
{{- end}}
}

var titleRenderings = map[string][]string{
{{- range .Titles}}
	"{{.Key}}": {
{{- range .Renderings}}
		{{.}},
{{- end}}
	},
{{- end}}
}

// {{exported .TextAccessor}} returns a container over the rendered text candidates for key.
func {{exported .TextAccessor}}(key string, args ...any) *fit.Container[string] {
	return fit.NewContainer({{.Container}}.Texts(key, args...), fit.WidthFits)
}

// {{exported .TitleAccessor}} returns a titled container over the rendered title candidates for key.
func {{exported .TitleAccessor}}(key string, content func(), args ...any) *fit.Titled {
	return fit.NewTitled({{.Container}}.Titles(key, args...), content)
}
`
