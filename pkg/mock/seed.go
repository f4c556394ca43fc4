package mock

import (
	"time"

	"github.com/saturnines/blogql/pkg/blog"
)

// TimeFormat renders timestamps with millisecond precision in UTC.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

const day = 24 * time.Hour

type seedPost struct {
	id, title, body string
	author          int
	tags            []string
	age             time.Duration
}

var seedPosts = []seedPost{
	{
		id:    "post-1",
		title: "ReactとGraphQLを使ったブログアプリケーション",
		body: "この記事では、ReactとGraphQLを使用してブログアプリケーションを構築する方法について説明します。\n\n" +
			"## はじめに\n\nReactは、ユーザーインターフェースを構築するためのJavaScriptライブラリです。" +
			"GraphQLは、APIのクエリ言語であり、必要なデータだけを効率的に取得できます。\n\n" +
			"## 実装のポイント\n\n- React Queryを使用したデータフェッチング\n" +
			"- GraphQL Code Generatorによる型安全性の確保\n- ZodとReact Hook Formによるバリデーション",
		author: 0,
		tags:   []string{"React", "GraphQL", "TypeScript"},
		age:    2 * day,
	},
	{
		id:    "post-2",
		title: "Next.jsのApp Router入門",
		body: "Next.js 13以降で導入されたApp Routerについて、基本的な使い方を解説します。\n\n" +
			"## App Routerとは\n\nApp Routerは、Next.jsの新しいルーティングシステムです。" +
			"ファイルベースのルーティングをより柔軟に、かつ強力にします。\n\n" +
			"## 主な特徴\n\n- Server Componentsによるパフォーマンス向上\n" +
			"- レイアウトとテンプレートによる再利用性\n- ストリーミングとSuspenseのサポート",
		author: 1,
		tags:   []string{"Next.js", "React", "Web開発"},
		age:    5 * day,
	},
	{
		id:    "post-3",
		title: "TypeScriptで型安全な開発を実現する",
		body: "TypeScriptを使用することで、JavaScriptの開発をより安全かつ効率的に行うことができます。\n\n" +
			"## TypeScriptの利点\n\n- コンパイル時の型チェック\n- 優れたIDEサポート\n- リファクタリングの安全性\n\n" +
			"## 実践的な使い方\n\n型定義を適切に使用することで、バグを早期に発見し、コードの品質を向上させることができます。",
		author: 2,
		tags:   []string{"TypeScript", "プログラミング"},
		age:    7 * day,
	},
	{
		id:    "post-4",
		title: "GraphQL Code Generatorの活用方法",
		body: "GraphQL Code Generatorを使用することで、GraphQLスキーマからTypeScriptの型定義を自動生成できます。\n\n" +
			"## セットアップ\n\n1. 必要なパッケージのインストール\n2. 設定ファイルの作成\n3. コード生成の実行\n\n" +
			"## メリット\n\n- 型安全性の確保\n- 開発効率の向上\n- スキーマ変更時の自動反映",
		author: 3,
		tags:   []string{"GraphQL", "TypeScript", "開発ツール"},
		age:    10 * day,
	},
	{
		id:    "post-5",
		title: "React Queryでデータフェッチングを効率化",
		body: "React Queryを使用することで、サーバー状態の管理を簡単かつ効率的に行うことができます。\n\n" +
			"## React Queryの特徴\n\n- 自動的なキャッシュ管理\n- バックグラウンドでのデータ更新\n- エラーハンドリングとリトライ機能\n\n" +
			"## 実装例\n\nuseQueryフックを使用することで、データの取得、キャッシュ、更新を簡単に実装できます。",
		author: 4,
		tags:   []string{"React", "React Query", "状態管理"},
		age:    14 * day,
	},
}

// SeedPosts returns the five sample posts, published 2, 5, 7, 10 and 14
// days before now.
func SeedPosts(now time.Time) []blog.Post {
	posts := make([]blog.Post, len(seedPosts))
	for i, s := range seedPosts {
		posts[i] = blog.Post{
			ID:          s.id,
			Title:       s.title,
			Body:        s.body,
			Author:      blog.Users[s.author],
			Tags:        append([]string(nil), s.tags...),
			PublishedAt: now.Add(-s.age).UTC().Format(TimeFormat),
		}
	}
	return posts
}

// NewSeededStore returns a store holding SeedPosts(now).
func NewSeededStore(now time.Time) *Store {
	return NewStore(SeedPosts(now)...)
}
