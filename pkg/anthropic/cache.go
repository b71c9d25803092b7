package anthropic

// BuildCachedSystemBlocks constructs a system prompt block with an ephemeral
// cache breakpoint. An empty ttl uses the API default of five minutes.
func BuildCachedSystemBlocks(text, ttl string) []SystemBlock {
	return []SystemBlock{
		{
			Text: text,
			CacheControl: &CacheControl{
				TTL: ttl,
			},
		},
	}
}
