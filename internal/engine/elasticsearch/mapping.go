package elasticsearch

// DefaultIndexName is the default Elasticsearch index used for product documents.
const DefaultIndexName = "products"

// buildIndexMapping returns the full JSON mapping for the products index.
// Single shard, no replicas: the index is small and rebuilt from the
// relational store on demand.
func buildIndexMapping() string {
	return `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0
  },
  "mappings": {
    "properties": {
      "id":            { "type": "long" },
      "name":          { "type": "text", "fields": { "keyword": { "type": "keyword", "ignore_above": 256 } } },
      "description":   { "type": "text" },
      "price":         { "type": "double" },
      "category_id":   { "type": "long" },
      "category_name": { "type": "text", "fields": { "keyword": { "type": "keyword" } } },
      "image":         { "type": "keyword", "index": false },
      "suggest":       { "type": "completion" }
    }
  }
}`
}
