package blog

const postFields = `
    id
    title
    body
    author {
      id
      name
      avatarUrl
    }
    tags
    publishedAt`

// ListPostsQuery fetches every post.
const ListPostsQuery = `query GetPosts {
  posts {` + postFields + `
  }
}`

// GetPostQuery fetches one post by $id.
const GetPostQuery = `query GetPost($id: ID!) {
  post(id: $id) {` + postFields + `
  }
}`

// GetUserQuery fetches one user by $id.
const GetUserQuery = `query GetUser($id: ID!) {
  user(id: $id) {
    id
    name
    avatarUrl
  }
}`

// CreatePostMutation creates a post from $input.
const CreatePostMutation = `mutation CreatePost($input: CreatePostInput!) {
  createPost(input: $input) {` + postFields + `
  }
}`
