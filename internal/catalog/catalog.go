// Package catalog holds the static skill taxonomy used for lexical extraction.
// The catalog is immutable after construction; extensions are merged in once
// via New and never mutated afterwards.
package catalog

import (
	"sort"
	"strings"
)

// Catalog maps category names to sets of canonical, lowercase skill terms.
type Catalog struct {
	categories map[string]map[string]struct{}
}

// builtin is the default taxonomy. A term may legally appear in more than one
// category (e.g. "sql"); extraction records every (term, category) pair.
var builtin = map[string][]string{
	"languages": {
		"go", "golang", "python", "java", "javascript", "typescript", "c", "c++", "c#",
		"rust", "ruby", "php", "kotlin", "swift", "scala", "objective-c", "perl",
		"haskell", "elixir", "erlang", "clojure", "dart", "lua", "r", "julia",
		"matlab", "groovy", "bash", "powershell", "sql", "html", "css", "sass",
		"fortran", "cobol", "assembly", "solidity", "zig", "f#", "ocaml",
	},
	"frameworks": {
		"react", "angular", "vue", "svelte", "next.js", "nuxt", "node.js", "express",
		"nestjs", "django", "flask", "fastapi", "spring", "spring boot", "rails",
		"laravel", "symfony", "asp.net", ".net", "gin", "echo", "fiber", "chi",
		"qt", "electron", "flutter", "react native", "swiftui", "jetpack compose",
		"graphql", "grpc", "protobuf", "websocket", "jquery", "bootstrap",
		"tailwind", "redux", "rxjs", "hibernate", "ef core",
	},
	"databases": {
		"postgresql", "mysql", "mariadb", "sqlite", "oracle", "sql server",
		"mongodb", "cassandra", "couchdb", "dynamodb", "redis", "memcached",
		"elasticsearch", "opensearch", "solr", "neo4j", "influxdb", "timescaledb",
		"clickhouse", "cockroachdb", "snowflake", "bigquery", "redshift",
		"qdrant", "pinecone", "sql",
	},
	"cloud": {
		"aws", "azure", "gcp", "google cloud", "digitalocean", "heroku", "vercel",
		"netlify", "cloudflare", "lambda", "ec2", "s3", "ecs", "eks", "fargate",
		"cloudformation", "cloud functions", "app engine", "aks", "gke",
		"openstack", "serverless", "cloud run", "route53", "iam",
	},
	"devops": {
		"docker", "kubernetes", "helm", "terraform", "ansible", "puppet", "chef",
		"jenkins", "gitlab ci", "github actions", "circleci", "travis ci", "argocd",
		"flux", "prometheus", "grafana", "datadog", "new relic", "splunk", "istio",
		"envoy", "nginx", "haproxy", "vault", "consul", "packer", "vagrant",
		"ci/cd", "linux", "git", "svn",
	},
	"data": {
		"machine learning", "deep learning", "nlp", "computer vision",
		"tensorflow", "pytorch", "keras", "scikit-learn", "pandas", "numpy",
		"scipy", "matplotlib", "jupyter", "spark", "hadoop", "hive", "kafka",
		"flink", "airflow", "dbt", "etl", "data engineering", "data science",
		"data analysis", "statistics", "a/b testing", "llm", "transformers",
		"langchain", "rag", "embeddings", "openai", "hugging face", "mlops",
		"feature engineering",
	},
	"security": {
		"oauth", "oauth2", "openid connect", "saml", "jwt", "tls", "ssl",
		"penetration testing", "owasp", "encryption", "pki", "siem",
		"vulnerability assessment", "zero trust", "soc2",
	},
	"practices": {
		"agile", "scrum", "kanban", "tdd", "bdd", "ddd", "pair programming",
		"code review", "microservices", "rest", "soap", "event-driven",
		"domain-driven design", "clean architecture", "design patterns",
		"distributed systems", "unit testing", "integration testing",
		"observability", "site reliability", "performance tuning",
	},
	"soft skills": {
		"leadership", "mentoring", "communication", "teamwork", "collaboration",
		"problem solving", "critical thinking", "time management",
		"stakeholder management", "project management", "presentation",
		"negotiation", "adaptability", "ownership", "cross-functional",
	},
}

// Default returns a catalog containing only the built-in taxonomy.
func Default() *Catalog {
	return New(nil)
}

// New builds a catalog from the built-in taxonomy merged with the provided
// extensions. Extension terms are lowercased and trimmed; empty terms and
// categories are ignored.
func New(extra map[string][]string) *Catalog {
	categories := make(map[string]map[string]struct{}, len(builtin))

	merge := func(category string, terms []string) {
		category = strings.ToLower(strings.TrimSpace(category))
		if category == "" {
			return
		}
		set, ok := categories[category]
		if !ok {
			set = make(map[string]struct{}, len(terms))
			categories[category] = set
		}
		for _, term := range terms {
			term = strings.ToLower(strings.TrimSpace(term))
			if term == "" {
				continue
			}
			set[term] = struct{}{}
		}
	}

	for category, terms := range builtin {
		merge(category, terms)
	}
	for category, terms := range extra {
		merge(category, terms)
	}

	return &Catalog{categories: categories}
}

// Categories returns a copy of the category -> terms mapping. Mutating the
// returned value does not affect the catalog.
func (c *Catalog) Categories() map[string][]string {
	out := make(map[string][]string, len(c.categories))
	for category, set := range c.categories {
		terms := make([]string, 0, len(set))
		for term := range set {
			terms = append(terms, term)
		}
		sort.Strings(terms)
		out[category] = terms
	}
	return out
}

// CategoryNames returns the sorted category names.
func (c *Catalog) CategoryNames() []string {
	names := make([]string, 0, len(c.categories))
	for category := range c.categories {
		names = append(names, category)
	}
	sort.Strings(names)
	return names
}

// Size returns the total number of (term, category) entries.
func (c *Catalog) Size() int {
	total := 0
	for _, set := range c.categories {
		total += len(set)
	}
	return total
}

// Walk calls fn for every (category, term) pair in deterministic order.
func (c *Catalog) Walk(fn func(category, term string)) {
	for _, category := range c.CategoryNames() {
		set := c.categories[category]
		terms := make([]string, 0, len(set))
		for term := range set {
			terms = append(terms, term)
		}
		sort.Strings(terms)
		for _, term := range terms {
			fn(category, term)
		}
	}
}
