package sqlstore

import (
	"context"
	"fmt"

	"github.com/louisbranch/sqltour/internal/services/catalog/storage"
)

// CreateNode inserts one node and returns its id.
func (s *Store) CreateNode(ctx context.Context, name string) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	name, err := storage.NormalizeName("node name", name)
	if err != nil {
		return 0, err
	}
	return s.insertReturningID(ctx, "create node", `INSERT INTO nodes (name) VALUES (?)`, name)
}

// LinkNodes records parentID as a parent of childID.
func (s *Store) LinkNodes(ctx context.Context, parentID, childID int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := validateID("parent node id", parentID); err != nil {
		return err
	}
	if err := validateID("child node id", childID); err != nil {
		return err
	}
	if parentID == childID {
		return fmt.Errorf("%w: node cannot be its own parent", storage.ErrInvalidArgument)
	}
	if _, err := s.q.ExecContext(
		ctx,
		s.rebind(`INSERT INTO node_to_nodes (parent_node_id, child_node_id) VALUES (?, ?)`),
		parentID,
		childID,
	); err != nil {
		return s.classify("link nodes", err)
	}
	return nil
}

// ListNodeChildren returns the direct children of id.
func (s *Store) ListNodeChildren(ctx context.Context, id int64) ([]storage.Node, error) {
	return s.listLinkedNodes(ctx, "list node children", "child_node_id", "parent_node_id", id)
}

// ListNodeParents returns the direct parents of id.
func (s *Store) ListNodeParents(ctx context.Context, id int64) ([]storage.Node, error) {
	return s.listLinkedNodes(ctx, "list node parents", "parent_node_id", "child_node_id", id)
}

// listLinkedNodes returns nodes whose id sits in joinColumn of a link whose
// filterColumn equals id. Column names are fixed by the callers above.
func (s *Store) listLinkedNodes(ctx context.Context, op, joinColumn, filterColumn string, id int64) ([]storage.Node, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if err := validateID("node id", id); err != nil {
		return nil, err
	}
	rows, err := s.q.QueryContext(
		ctx,
		s.rebind(fmt.Sprintf(`SELECT n.id, n.name
		   FROM nodes AS n
		  INNER JOIN node_to_nodes AS l ON l.%s = n.id
		  WHERE l.%s = ?
		  ORDER BY n.id`, joinColumn, filterColumn)),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var nodes []storage.Node
	for rows.Next() {
		var node storage.Node
		if err := rows.Scan(&node.ID, &node.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return nodes, nil
}
