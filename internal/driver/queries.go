package driver

const (
	ExistingParcelIDsQuery = `
		MATCH (p:Parcel)
		RETURN p.id AS id
	`

	ExistingOwnerIDsQuery = `
		MATCH (o:Owner)
		RETURN o.id AS id
	`

	// Both directions come back; the reader folds them to canonical keys.
	ExistingAdjacencyPairsQuery = `
		MATCH (a:Parcel)-[:ADJACENT_TO]->(b:Parcel)
		RETURN a.id AS a, b.id AS b
	`

	CreateParcelsQuery = `
		UNWIND $parcels AS row
		CREATE (p:Parcel)
		SET p = row
		MERGE (o:Owner {id: row.owner})
		MERGE (o)-[:OWNS]->(p)
	`

	CreateAdjacencyQuery = `
		UNWIND $pairs AS pair
		MATCH (a:Parcel {id: pair[0]})
		MATCH (b:Parcel {id: pair[1]})
		MERGE (a)-[:ADJACENT_TO]->(b)
		MERGE (b)-[:ADJACENT_TO]->(a)
	`

	CreateOwnerNeighborsQuery = `
		UNWIND $pairs AS pair
		MERGE (a:Owner {id: pair[0]})
		MERGE (b:Owner {id: pair[1]})
		MERGE (a)-[:NEIGHBOR_OF]->(b)
		MERGE (b)-[:NEIGHBOR_OF]->(a)
	`

	CountParcelsQuery   = `MATCH (p:Parcel) RETURN count(p) AS count`
	CountOwnersQuery    = `MATCH (o:Owner) RETURN count(o) AS count`
	CountAdjacencyQuery = `MATCH (:Parcel)-[r:ADJACENT_TO]->(:Parcel) RETURN count(r) AS count`
	CountNeighborsQuery = `MATCH (:Owner)-[r:NEIGHBOR_OF]->(:Owner) RETURN count(r) AS count`
)

var neo4jSchema = []string{
	"CREATE CONSTRAINT parcel_id IF NOT EXISTS FOR (p:Parcel) REQUIRE p.id IS UNIQUE",
	"CREATE CONSTRAINT owner_id IF NOT EXISTS FOR (o:Owner) REQUIRE o.id IS UNIQUE",
}

var memgraphSchema = []string{
	"CREATE INDEX ON :Parcel(id);",
	"CREATE INDEX ON :Owner(id);",
	"CREATE CONSTRAINT ON (p:Parcel) ASSERT p.id IS UNIQUE;",
	"CREATE CONSTRAINT ON (o:Owner) ASSERT o.id IS UNIQUE;",
}

// SchemaQueries lists the schema statements for a flavor.
func SchemaQueries(f Flavor) []string {
	if f == FlavorMemgraph {
		return memgraphSchema
	}
	return neo4jSchema
}
