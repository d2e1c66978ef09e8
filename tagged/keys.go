package tagged

// TagKey returns the derived address of a tag's member set.
// Format: tag:<tag>:keys
func TagKey(tag string) string {
	return "tag:" + tag + ":keys"
}

// ReverseKey returns the derived address of a key's reverse tag set.
// Format: <key>:tags
func ReverseKey(key string) string {
	return key + ":tags"
}
