package jsoncase

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	cases := map[string]string{
		"parent_comment_id": "parentCommentId",
		"apartment_number":  "apartmentNumber",
		"id":                "id",
	}
	for snake, camel := range cases {
		assert.Equal(t, camel, CamelKey(snake))
		assert.Equal(t, snake, SnakeKey(camel))
	}
	assert.Equal(t, "image_url", SnakeKey("imageURL"))
	assert.Equal(t, "alreadyCamel", CamelKey("alreadyCamel"))
}

func TestNestedDocuments(t *testing.T) {
	var doc interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"post_id":1,"comments":[{"parent_comment_id":2,"like_count":3}]}`), &doc))

	camel := ToCamelCase(doc).(map[string]interface{})
	assert.Contains(t, camel, "postId")
	first := camel["comments"].([]interface{})[0].(map[string]interface{})
	assert.Contains(t, first, "parentCommentId")
	assert.Contains(t, first, "likeCount")

	back, err := json.Marshal(ToSnakeCase(camel))
	require.NoError(t, err)
	assert.JSONEq(t, `{"post_id":1,"comments":[{"parent_comment_id":2,"like_count":3}]}`, string(back))
}
