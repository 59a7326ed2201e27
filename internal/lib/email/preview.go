package email

// PreviewData holds sample values per template, used to render previews
// and in tests.
var PreviewData = map[Template]map[string]string{
	TemplateNotification: {
		"Subject": "Scheduled maintenance",
		"Message": "The service will be unavailable on Sunday 02:00-03:00 UTC.",
	},
}
