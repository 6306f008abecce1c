package gcs

// Fields are merged into a tool result in place of the inline payload
func (r *UploadResult) Fields() map[string]any {
	return map[string]any{
		"resource_link": r.URL,
		"resource_size": r.FileSize,
		"content_type":  r.ContentType,
		"is_temp_file":  r.IsTemp,
		"reason":        "payload too large, see resource_link for content",
	}
}

// Merge copies the offload fields into result and returns it
func (r *UploadResult) Merge(result map[string]any) map[string]any {
	for k, v := range r.Fields() {
		result[k] = v
	}
	return result
}
