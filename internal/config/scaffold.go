package config

// Scaffold returns a commented starter configuration, written by the init
// command. It mirrors Default so a fresh file changes nothing until edited.
func Scaffold() []byte {
	return []byte(scaffoldYAML)
}

const scaffoldYAML = `# TableScout configuration.
#
# Everything here has a sensible default; delete what you don't change.
# Credentials are usually better off in the environment:
#   TAVILY_API_KEY, OPENAI_API_KEY, TABLESCOUT_SHEET_ID

location: "Washington DC"

# Scored candidates below this overall score are never proposed. 0 keeps all.
quality_floor: 2.0

# Sessions, the CSV list, and the cache live here.
data_dir: ".tablescout"

store:
  # file, redis, or memory. redis needs an address.
  kind: file
  # redis: "localhost:6379"
  # Encrypt run snapshots at rest with the 32-byte key in this file
  # (or set TABLESCOUT_SEAL_KEY_FILE):
  # seal_key_file: ""
  # Scrub regex matches from stored free text:
  # mask_patterns:
  #   - '[\w.+-]+@[\w-]+\.[\w.]+'

list:
  # csv, sheets, or memory.
  kind: csv
  path: "list.csv"
  # For the sheets kind:
  # spreadsheet_id: ""
  # sheet_name: "Date Night Restaurant List"
  # credentials_file: "credentials.json"
  # token_file: "token.json"

cache:
  disabled: false
  ttl_hours: 24

openai:
  model: "gpt-4o-mini"

tavily:
  max_results: 5
  search_depth: basic

# Where discovery looks. Each source is served by exactly one adapter:
# a command spawns an external scraper, feeds poll RSS, and everything
# else searches the web with the tailored queries.
sources:
  - id: eater-dc
    name: "Eater DC"
    domain: eater.com
    queries:
      - "Eater DC best restaurants Washington DC"
      - "Eater DC essential restaurants 38"
  - id: michelin-guide
    name: "Michelin Guide"
    domain: guide.michelin.com
    queries:
      - "Michelin Guide starred restaurants Washington DC"
  - id: washington-post
    name: "Washington Post Food"
    domain: washingtonpost.com
    queries:
      - "Washington Post Tom Sietsema best restaurants Washington DC"
  - id: washingtonian
    name: "Washingtonian Magazine"
    domain: washingtonian.com
    queries:
      - "Washingtonian 100 very best restaurants"
  - id: infatuation
    name: "The Infatuation"
    domain: theinfatuation.com
    queries:
      - "The Infatuation best restaurants Washington DC"
# Example of a feed-backed source:
#  - id: local-blog
#    name: "Neighborhood Dining Blog"
#    feeds:
#      - "https://example.com/dining/rss.xml"
# Example of a scraper-backed source:
#  - id: hidden-gems
#    name: "Hidden Gems"
#    command: "./scrapers/hidden-gems"
#    args: ["--format", "json"]
`
